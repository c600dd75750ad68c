// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperr "sensorctl/cli/internal/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusPhrase renders a response status as "<code> <reason>".
func StatusPhrase(resp *http.Response) string {
	if s := strings.TrimSpace(resp.Status); s != "" {
		return s
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// ExtractDetail returns the structured error detail carried by body, if any.
// The API answers with {"detail": "..."}; request validation failures use
// {"detail": [{"msg": "..."}, ...]}, whose messages are joined.
func ExtractDetail(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists():
		return "", false
	case detail.Type == gjson.String:
		s := strings.TrimSpace(detail.String())
		return s, s != ""
	case detail.IsArray():
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			if m := item.Get("msg"); m.Exists() {
				msgs = append(msgs, m.String())
			} else if item.Type == gjson.String {
				msgs = append(msgs, item.String())
			}
			return true
		})
		return strings.Join(msgs, "; "), len(msgs) > 0
	default:
		return detail.Raw, true
	}
}

// detailError builds the error for a non-success response whose body may carry
// a structured detail. fallback formats the status phrase when it does not.
func detailError(resp *http.Response, kind apperr.Kind, fallback func(status string) string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg, ok := ExtractDetail(body)
	if !ok {
		msg = fallback(StatusPhrase(resp))
	}
	return &apperr.E{Kind: kind, Message: msg, Status: resp.StatusCode}
}

// statusError builds the error for a non-success response whose body is not
// expected to be structured.
func statusError(resp *http.Response, prefix string) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return apperr.Status(resp.StatusCode, prefix+StatusPhrase(resp))
}
