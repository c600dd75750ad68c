// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/tidwall/gjson"

	apperr "sensorctl/cli/internal/errors"
)

// ExportPayload is a successful export response. Body must be closed.
type ExportPayload struct {
	Body        io.ReadCloser
	ContentType string
	// Filename is the name suggested by Content-Disposition, if any.
	Filename string
}

// Import posts a multipart body to /data/import and returns the server message.
func (h *HTTP) Import(ctx context.Context, accessToken string, body io.Reader, contentType string) (string, error) {
	req, err := h.newRequest(ctx, http.MethodPost, h.endpoints.Import, body)
	if err != nil {
		return "", err
	}
	setBearer(req, accessToken)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return "", detailError(resp, apperr.KindTransport, func(status string) string {
			return "Import failed: " + status
		})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, "could not read import response", err)
	}
	if msg := gjson.GetBytes(raw, "message"); msg.Type == gjson.String && msg.String() != "" {
		return msg.String(), nil
	}
	return "Import successful.", nil
}

// Export calls GET /data/export?table=<name>&format=<csv|excel|json>.
// Export errors are not guaranteed to carry a JSON body, so failures report the
// status phrase only.
func (h *HTTP) Export(ctx context.Context, accessToken, table, format string) (*ExportPayload, error) {
	params := url.Values{}
	params.Set("table", table)
	params.Set("format", format)

	req, err := h.newRequest(ctx, http.MethodGet, h.endpoints.Export+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)

	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, statusError(resp, "Export failed: ")
	}

	return &ExportPayload{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil || params["filename"] == "" {
		return ""
	}
	return filepath.Base(params["filename"])
}
