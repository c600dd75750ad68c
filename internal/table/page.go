// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"encoding/json"
	"fmt"

	"sensorctl/cli/internal/backend"
)

// IDColumn is the storage key hidden from column discovery.
const IDColumn = "_id"

// Page is one rendered page of a table.
type Page struct {
	Rows []backend.Row
	// Columns is the first row's key order, without IDColumn.
	Columns    []string
	TotalCount int
	PageNumber int
	PageSize   int
}

// TotalPages returns ceil(TotalCount / PageSize).
func (p Page) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.PageNumber > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.PageNumber < p.TotalPages() }

// Cell renders row i's value for col. Missing and null values render empty.
func (p Page) Cell(i int, col string) string {
	if i < 0 || i >= len(p.Rows) {
		return ""
	}
	return FormatValue(p.Rows[i][col])
}

// FormatValue renders a row value as display text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case json.RawMessage:
		return string(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

func columns(keyOrder []string) []string {
	cols := make([]string, 0, len(keyOrder))
	for _, k := range keyOrder {
		if k != IDColumn {
			cols = append(cols, k)
		}
	}
	return cols
}

// clampPage bounds n to [1, totalPages]. An unknown total only enforces the
// lower bound.
func clampPage(n, totalPages int) int {
	if totalPages > 0 && n > totalPages {
		n = totalPages
	}
	if n < 1 {
		n = 1
	}
	return n
}
