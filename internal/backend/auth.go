// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	apperr "sensorctl/cli/internal/errors"
)

// Login posts form-encoded username/password to the login endpoint and
// returns the issued access token.
func (h *HTTP) Login(ctx context.Context, identifier, secret string) (string, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	req, err := h.newRequest(ctx, http.MethodPost, h.endpoints.Login, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return "", detailError(resp, apperr.KindAuth, func(status string) string {
			return "Login failed: " + status
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, "could not read login response", err)
	}
	if !gjson.ValidBytes(body) {
		return "", apperr.New(apperr.KindDecode, "Login failed: response is not JSON")
	}
	token := extractAccessToken(gjson.ParseBytes(body))
	if token == "" {
		return "", apperr.New(apperr.KindAuth, "Login failed: No access token received.")
	}
	return token, nil
}

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result gjson.Result) string {
	for _, key := range []string{"access_token", "accessToken", "token"} {
		if v := result.Get(key); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// Register posts {phone_number, password} as JSON to the registration endpoint.
func (h *HTTP) Register(ctx context.Context, phoneNumber, password string) error {
	payload, err := json.Marshal(map[string]string{
		"phone_number": phoneNumber,
		"password":     password,
	})
	if err != nil {
		return err
	}

	req, err := h.newRequest(ctx, http.MethodPost, h.endpoints.Register, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return detailError(resp, apperr.KindAuth, func(status string) string {
			return "Registration failed: " + status
		})
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
