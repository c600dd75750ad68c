// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package exporter downloads server-rendered table exports.
//
// JSON exports are for reading: they are reformatted and handed to a Viewer,
// never written to disk. CSV and spreadsheet exports are opaque blobs handed to
// a Saver as <table>.csv or <table>.xlsx.
package exporter

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"sensorctl/cli/internal/backend"
	apperr "sensorctl/cli/internal/errors"
)

// Format is an export format.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
	FormatJSON        Format = "json"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, true
	case "spreadsheet", "excel", "xlsx":
		return FormatSpreadsheet, true
	case "json":
		return FormatJSON, true
	}
	return "", false
}

// Wire returns the format name the export endpoint expects.
func (f Format) Wire() string {
	if f == FormatSpreadsheet {
		return "excel"
	}
	return string(f)
}

// Ext returns the saved file extension.
func (f Format) Ext() string {
	if f == FormatSpreadsheet {
		return "xlsx"
	}
	return string(f)
}

// Source serves raw exports.
type Source interface {
	Export(ctx context.Context, accessToken, table, format string) (*backend.ExportPayload, error)
}

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() string
}

// Viewer shows a document inline.
type Viewer interface {
	View(title string, doc []byte) error
}

// Saver stores a downloaded file and returns where it went.
type Saver interface {
	Save(name string, r io.Reader) (string, error)
}

// Result describes a finished export.
type Result struct {
	Format Format
	// Path is set for saved exports.
	Path string
	// Viewed is set for inline exports.
	Viewed bool
}

// Exporter runs exports for one session.
type Exporter struct {
	src    Source
	tokens TokenSource
	viewer Viewer
	saver  Saver
	log    zerolog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option { return func(e *Exporter) { e.log = l } }

// New creates an Exporter.
func New(src Source, tokens TokenSource, viewer Viewer, saver Saver, opts ...Option) *Exporter {
	e := &Exporter{src: src, tokens: tokens, viewer: viewer, saver: saver, log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Request exports table in format f.
func (e *Exporter) Request(ctx context.Context, table string, f Format) (Result, error) {
	res := Result{Format: f}
	if _, ok := ParseFormat(string(f)); !ok {
		return res, apperr.New(apperr.KindValidation, "Unsupported export format: "+string(f))
	}
	tok := e.tokens.Token()
	if tok == "" {
		return res, apperr.New(apperr.KindAuth, "Authentication token not found. Please log in.")
	}
	if strings.TrimSpace(table) == "" {
		return res, apperr.New(apperr.KindValidation, "Please select a table to export.")
	}

	payload, err := e.src.Export(ctx, tok, table, f.Wire())
	if err != nil {
		return res, err
	}
	defer payload.Body.Close()

	e.log.Debug().Str("table", table).Str("format", f.Wire()).Str("content_type", payload.ContentType).Msg("export received")

	if f == FormatJSON {
		doc, err := io.ReadAll(payload.Body)
		if err != nil {
			return res, apperr.Wrap(apperr.KindTransport, "Export failed: could not read response", err)
		}
		if !gjson.ValidBytes(doc) {
			return res, apperr.New(apperr.KindDecode, "Export failed: response is not valid JSON")
		}
		if err := e.viewer.View(table+".json", Reformat(doc)); err != nil {
			return res, err
		}
		res.Viewed = true
		return res, nil
	}

	path, err := e.saver.Save(table+"."+f.Ext(), payload.Body)
	if err != nil {
		return res, apperr.Wrap(apperr.KindTransport, "Export failed: could not save file", err)
	}
	res.Path = path
	return res, nil
}

// Reformat re-indents a JSON document with two spaces, keeping key order.
func Reformat(doc []byte) []byte {
	return pretty.PrettyOptions(doc, &pretty.Options{Width: 80, Indent: "  "})
}
