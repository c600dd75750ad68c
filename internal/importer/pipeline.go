// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package importer uploads CSV, spreadsheet and JSON data into a table.
//
// Whatever the source, the server receives one multipart body with exactly two
// fields: "table" and "file". Pasted JSON is sent as a file named data.json.
// Local checks run before the token is even read, so invalid input never
// reaches the network.
package importer

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	apperr "sensorctl/cli/internal/errors"
)

// PastedFileName is the file name given to pasted JSON.
const PastedFileName = "data.json"

// Status is the pipeline state.
type Status int

const (
	Idle Status = iota
	Validating
	Uploading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Uploading:
		return "uploading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Uploader sends a prepared multipart body.
type Uploader interface {
	Import(ctx context.Context, accessToken string, body io.Reader, contentType string) (string, error)
}

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() string
}

// Pipeline holds one import form and its outcome.
type Pipeline struct {
	up     Uploader
	tokens TokenSource
	log    zerolog.Logger

	mu      sync.Mutex
	form    Form
	status  Status
	message string
	err     error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// New creates an idle pipeline with the CSV format selected.
func New(up Uploader, tokens TokenSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		up:     up,
		tokens: tokens,
		log:    zerolog.Nop(),
		form:   Form{Format: FormatCSV, JSONSource: JSONPaste},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Form returns a copy of the pending form.
func (p *Pipeline) Form() Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Status returns the state, the last server message and the last error.
func (p *Pipeline) Status() (Status, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.message, p.err
}

// SetTable selects the target table.
func (p *Pipeline) SetTable(table string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Table = table
}

// SetFormat switches the format. A selected file never carries over to a
// different format, and pasted text is dropped when leaving JSON.
func (p *Pipeline) SetFormat(f Format) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f == p.form.Format {
		return
	}
	p.form.Format = f
	p.form.File = nil
	if f != FormatJSON {
		p.form.JSONText = ""
	}
	p.resetLocked()
}

// SetJSONSource switches between pasted and file JSON, clearing the other input.
func (p *Pipeline) SetJSONSource(src JSONSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if src == p.form.JSONSource {
		return
	}
	p.form.JSONSource = src
	if src == JSONPaste {
		p.form.File = nil
	} else {
		p.form.JSONText = ""
	}
	p.resetLocked()
}

// SelectFile sets the file input.
func (p *Pipeline) SelectFile(f *File) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.File = f
	p.resetLocked()
}

// SetJSONText sets the pasted JSON input.
func (p *Pipeline) SetJSONText(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.JSONText = s
	p.resetLocked()
}

func (p *Pipeline) resetLocked() {
	if p.status == Uploading {
		return
	}
	p.status, p.message, p.err = Idle, "", nil
}

// Submit validates the form, uploads it and returns the server's message.
// On success the input that was sent is cleared; the other input is kept.
func (p *Pipeline) Submit(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.status == Uploading || p.status == Validating {
		p.mu.Unlock()
		return "", apperr.New(apperr.KindValidation, "An import is already running.")
	}
	p.status, p.message, p.err = Validating, "", nil
	form := p.form
	p.mu.Unlock()

	if err := validate(form); err != nil {
		return "", p.finish(err, "")
	}
	tok := p.tokens.Token()
	if tok == "" {
		return "", p.finish(apperr.New(apperr.KindAuth, "Authentication token not found. Please log in again."), "")
	}

	body, contentType, err := encode(form)
	if err != nil {
		return "", p.finish(err, "")
	}

	p.mu.Lock()
	p.status = Uploading
	p.mu.Unlock()

	p.log.Debug().Str("table", form.Table).Str("format", string(form.Format)).Int("bytes", body.Len()).Msg("uploading import")
	msg, err := p.up.Import(ctx, tok, body, contentType)
	if err != nil {
		return "", p.finish(err, "")
	}

	p.mu.Lock()
	if form.usesFile() {
		if p.form.File == form.File {
			p.form.File = nil
		}
	} else if p.form.JSONText == form.JSONText {
		p.form.JSONText = ""
	}
	p.mu.Unlock()
	return msg, p.finish(nil, msg)
}

func (p *Pipeline) finish(err error, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status, p.message, p.err = Failed, "", err
		return err
	}
	p.status, p.message, p.err = Succeeded, msg, nil
	return nil
}

// encode builds the two-field multipart body.
func encode(f Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if err := mw.WriteField("table", f.Table); err != nil {
		return nil, "", err
	}

	name, ctype := PastedFileName, "application/json"
	var src io.Reader
	if f.usesFile() {
		rc, err := f.File.Open()
		if err != nil {
			return nil, "", apperr.Wrap(apperr.KindValidation, "Could not read "+f.File.Name+".", err)
		}
		defer rc.Close()
		name, ctype, src = f.File.Name, contentTypeFor(f.File.Name), rc
	} else {
		src = bytes.NewReader([]byte(f.JSONText))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition("file", name))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", apperr.Wrap(apperr.KindValidation, "Could not read "+name+".", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
