// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package table loads pages of server-side tables whose columns are not known
// in advance.
//
// Fetcher keeps the selected table, page number and the last loaded page. Any
// change of table, page or token triggers a reload. Each reload takes a
// sequence number; a response that arrives after a newer reload was issued is
// dropped, so the page shown always belongs to the latest selection.
package table

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"sensorctl/cli/internal/backend"
	apperr "sensorctl/cli/internal/errors"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Source serves raw pages.
type Source interface {
	FetchPage(ctx context.Context, accessToken string, q backend.PageQuery) (*backend.DataPage, error)
}

// TokenSource supplies the current bearer token; "" means logged out.
type TokenSource interface {
	Token() string
}

// State is what a view renders.
type State struct {
	Table   string
	Page    Page
	Loading bool
	// Err is set when the last load failed. Page is then empty.
	Err error
}

// Fetcher owns one table view's page state.
type Fetcher struct {
	src      Source
	tokens   TokenSource
	pageSize int
	log      zerolog.Logger

	mu    sync.Mutex
	seq   uint64
	state State
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option { return func(f *Fetcher) { f.log = l } }

// NewFetcher creates a Fetcher with no table selected.
func NewFetcher(src Source, tokens TokenSource, opts ...Option) *Fetcher {
	f := &Fetcher{src: src, tokens: tokens, pageSize: DefaultPageSize, log: zerolog.Nop()}
	for _, o := range opts {
		o(f)
	}
	f.state.Page = Page{Rows: []backend.Row{}, PageNumber: 1, PageSize: f.pageSize}
	return f
}

// PageSize returns the fixed page size.
func (f *Fetcher) PageSize() int { return f.pageSize }

// Fetch loads one page without touching the Fetcher's state.
//
// It fails with an auth error, issuing no request, when there is no token, and
// with a validation error when table is empty. At most PageSize rows are
// returned even if the server sends more.
func (f *Fetcher) Fetch(ctx context.Context, table string, pageNumber int) (Page, error) {
	empty := Page{Rows: []backend.Row{}, PageNumber: clampPage(pageNumber, 0), PageSize: f.pageSize}

	tok := f.tokens.Token()
	if tok == "" {
		return empty, apperr.New(apperr.KindAuth, "Not logged in.")
	}
	if strings.TrimSpace(table) == "" {
		return empty, apperr.New(apperr.KindValidation, "Please select a table.")
	}

	dp, err := f.src.FetchPage(ctx, tok, backend.PageQuery{Table: table, Page: empty.PageNumber, Limit: f.pageSize})
	if err != nil {
		return empty, err
	}

	rows := dp.Rows
	if rows == nil {
		rows = []backend.Row{}
	}
	if len(rows) > f.pageSize {
		rows = rows[:f.pageSize]
	}
	total := dp.TotalItems
	if total < 0 {
		total = 0
	}
	return Page{
		Rows:       rows,
		Columns:    columns(dp.KeyOrder),
		TotalCount: total,
		PageNumber: empty.PageNumber,
		PageSize:   f.pageSize,
	}, nil
}

// State returns the current view state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetTable selects table, resets to page 1 and reloads.
func (f *Fetcher) SetTable(ctx context.Context, table string) State {
	f.mu.Lock()
	f.state.Table = table
	f.state.Page.PageNumber = 1
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// SetPage moves to page n, clamped to the known page range, and reloads.
func (f *Fetcher) SetPage(ctx context.Context, n int) State {
	f.mu.Lock()
	f.state.Page.PageNumber = clampPage(n, f.state.Page.TotalPages())
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// Next moves one page forward.
func (f *Fetcher) Next(ctx context.Context) State {
	return f.SetPage(ctx, f.State().Page.PageNumber+1)
}

// Prev moves one page back.
func (f *Fetcher) Prev(ctx context.Context) State {
	return f.SetPage(ctx, f.State().Page.PageNumber-1)
}

// TokenChanged reloads the current selection after a login or logout. The
// interactive data pager calls it when its session watch reports a new token.
func (f *Fetcher) TokenChanged(ctx context.Context) State {
	return f.Refresh(ctx)
}

// Refresh reloads the current selection. On failure the rows are cleared and
// the total reset to zero. If another reload was issued while this one was in
// flight, its result is discarded and the newer state is returned.
func (f *Fetcher) Refresh(ctx context.Context) State {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	table, pageNumber := f.state.Table, f.state.Page.PageNumber
	f.state.Loading = true
	f.mu.Unlock()

	page, err := f.Fetch(ctx, table, pageNumber)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		f.log.Debug().Uint64("seq", seq).Uint64("latest", f.seq).Str("table", table).Int("page", pageNumber).
			Msg("dropping stale page")
		return f.state
	}
	f.state = State{Table: table, Page: page, Err: err}
	if err != nil {
		f.log.Debug().Err(err).Str("table", table).Int("page", pageNumber).Msg("page load failed")
	}
	return f.state
}
