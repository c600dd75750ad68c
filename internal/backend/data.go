// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	apperr "sensorctl/cli/internal/errors"
)

// Row maps column names to scalar values. Values are string, json.Number,
// bool or nil; nested objects and arrays are kept as json.RawMessage.
// Columns are not known in advance: every table has its own shape.
type Row map[string]any

// DataPage is one decoded page of the data endpoint.
type DataPage struct {
	Rows []Row
	// KeyOrder is the key order of the first row as it appears in the document.
	KeyOrder []string
	// TotalItems is the server-side row count for the whole table.
	TotalItems int
}

// PageQuery addresses one page of a table.
type PageQuery struct {
	Table string
	Page  int
	Limit int
}

// ListTables calls GET /data/tables.
func (h *HTTP) ListTables(ctx context.Context, accessToken string) ([]string, error) {
	req, err := h.newRequest(ctx, http.MethodGet, h.endpoints.Tables, nil)
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, detailError(resp, apperr.KindTransport, func(status string) string {
			return "Error fetching tables: " + status
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransport, "could not read table list", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.New(apperr.KindDecode, "table list is not valid JSON")
	}
	tables := []string{}
	gjson.GetBytes(body, "tables").ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() != "" {
			tables = append(tables, v.String())
		}
		return true
	})
	return tables, nil
}

// FetchPage calls GET /data?table=<name>&page=<n>&limit=<m>.
func (h *HTTP) FetchPage(ctx context.Context, accessToken string, q PageQuery) (*DataPage, error) {
	params := url.Values{}
	params.Set("table", q.Table)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))

	req, err := h.newRequest(ctx, http.MethodGet, h.endpoints.Data+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, detailError(resp, apperr.KindTransport, func(status string) string {
			return "Error: " + status
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransport, "could not read page", err)
	}
	return DecodePage(body)
}

// DecodePage parses {"data": [...], "total_items": n}, keeping the first row's
// key order so columns render in document order.
func DecodePage(body []byte) (*DataPage, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperr.New(apperr.KindDecode, "page response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	data := doc.Get("data")
	if data.Exists() && data.Type != gjson.Null && !data.IsArray() {
		return nil, apperr.New(apperr.KindDecode, `page response "data" is not a list`)
	}

	page := &DataPage{Rows: []Row{}}
	var bad bool
	data.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			bad = true
			return false
		}
		row := Row{}
		first := len(page.Rows) == 0
		item.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if first {
				page.KeyOrder = append(page.KeyOrder, key)
			}
			row[key] = scalar(v)
			return true
		})
		page.Rows = append(page.Rows, row)
		return true
	})
	if bad {
		return nil, apperr.New(apperr.KindDecode, "page response contains a row that is not an object")
	}

	total := doc.Get("total_items")
	switch {
	case !total.Exists() || total.Type == gjson.Null:
		page.TotalItems = len(page.Rows)
	case total.Type != gjson.Number:
		return nil, apperr.New(apperr.KindDecode, `page response "total_items" is not a number`)
	default:
		page.TotalItems = max(int(total.Int()), 0)
	}
	return page, nil
}

func scalar(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.String()
	default:
		return json.RawMessage(v.Raw)
	}
}
