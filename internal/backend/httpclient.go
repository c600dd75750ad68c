// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperr "sensorctl/cli/internal/errors"
)

// HTTP implements API over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://127.0.0.1:8000")
	baseURL string
	// endpoints contains the URL paths for the API endpoints
	endpoints Endpoints
	// client is the underlying HTTP client
	client *http.Client
	log    zerolog.Logger
}

var _ API = (*HTTP)(nil)

// Option configures the HTTP client.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option { return func(h *HTTP) { h.client = c } }

// WithEndpoints replaces the default endpoint paths.
func WithEndpoints(e Endpoints) Option { return func(h *HTTP) { h.endpoints = e } }

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option { return func(h *HTTP) { h.log = l } }

// New creates a backend API implementation for baseURL.
// Timeouts are left to the transport default; callers bound requests with ctx.
func New(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   NormalizeBaseURL(baseURL),
		endpoints: DefaultEndpoints(),
		client:    &http.Client{},
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// BaseURL returns the normalized base URL.
func (h *HTTP) BaseURL() string { return h.baseURL }

func (h *HTTP) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransport, "could not build request", err)
	}
	h.setStandardHeaders(req)
	return req, nil
}

// setStandardHeaders sets headers sent with every request.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "sensorctl/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func setBearer(req *http.Request, accessToken string) {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// do sends req and logs the exchange. Network failures become transport errors.
func (h *HTTP) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := h.client.Do(req)
	ev := h.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Dur("elapsed", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("request failed")
		return nil, apperr.Wrap(apperr.KindTransport, "network error", err)
	}
	ev.Int("status", resp.StatusCode).Msg("request complete")
	return resp, nil
}

func success(code int) bool { return code >= 200 && code < 300 }
