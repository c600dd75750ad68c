// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorctl/cli/internal/backend"
	apperr "sensorctl/cli/internal/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// fakeSource serves pages from a fixed table of total rows.
type fakeSource struct {
	mu      sync.Mutex
	total   int
	extra   int
	err     error
	queries []backend.PageQuery
}

func (f *fakeSource) FetchPage(_ context.Context, tok string, q backend.PageQuery) (*backend.DataPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	dp := &backend.DataPage{Rows: []backend.Row{}, TotalItems: f.total}
	start := (q.Page - 1) * q.Limit
	for i := start; i < start+q.Limit+f.extra && i < f.total; i++ {
		dp.Rows = append(dp.Rows, backend.Row{"_id": fmt.Sprint(i), "timestamp": "t", "value": json.Number(fmt.Sprint(i))})
	}
	if len(dp.Rows) > 0 {
		dp.KeyOrder = []string{"_id", "timestamp", "value"}
	}
	return dp, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func TestFetch(t *testing.T) {
	src := &fakeSource{total: 42}
	f := NewFetcher(src, staticToken("tok"))

	page, err := f.Fetch(context.Background(), "Temperature", 5)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, 42, page.TotalCount)
	assert.Equal(t, 5, page.TotalPages())
	assert.Equal(t, []string{"timestamp", "value"}, page.Columns)
	assert.Equal(t, backend.PageQuery{Table: "Temperature", Page: 5, Limit: 10}, src.queries[0])

	again, err := f.Fetch(context.Background(), "Temperature", 5)
	require.NoError(t, err)
	assert.Equal(t, page.TotalCount, again.TotalCount)
}

func TestFetchNeverExceedsPageSize(t *testing.T) {
	src := &fakeSource{total: 100, extra: 7}
	f := NewFetcher(src, staticToken("tok"), WithPageSize(4))
	for n := 1; n <= 25; n++ {
		page, err := f.Fetch(context.Background(), "Humidity", n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Rows), 4)
	}
}

func TestFetchPreconditions(t *testing.T) {
	src := &fakeSource{total: 3}

	_, err := NewFetcher(src, staticToken("")).Fetch(context.Background(), "Temperature", 1)
	assert.ErrorIs(t, err, apperr.Auth)

	_, err = NewFetcher(src, staticToken("tok")).Fetch(context.Background(), " ", 1)
	assert.ErrorIs(t, err, apperr.Validation)

	assert.Zero(t, src.calls())
}

func TestRefreshFailureClearsRows(t *testing.T) {
	src := &fakeSource{total: 30}
	f := NewFetcher(src, staticToken("tok"))

	st := f.SetTable(context.Background(), "Temperature")
	require.NoError(t, st.Err)
	require.Len(t, st.Page.Rows, 10)

	src.err = apperr.Status(500, "Error: 500 Internal Server Error")
	st = f.Refresh(context.Background())
	require.Error(t, st.Err)
	assert.Empty(t, st.Page.Rows)
	assert.Zero(t, st.Page.TotalCount)
	assert.False(t, st.Loading)
	assert.Equal(t, "Temperature", st.Table)
}

func TestSetPageClampsAndTableResets(t *testing.T) {
	src := &fakeSource{total: 25}
	f := NewFetcher(src, staticToken("tok"))
	ctx := context.Background()

	f.SetTable(ctx, "Temperature")
	assert.Equal(t, 3, f.SetPage(ctx, 99).Page.PageNumber)
	assert.Equal(t, 1, f.SetPage(ctx, -4).Page.PageNumber)
	assert.Equal(t, 2, f.Next(ctx).Page.PageNumber)
	assert.Equal(t, 3, f.Next(ctx).Page.PageNumber)
	assert.Equal(t, 3, f.Next(ctx).Page.PageNumber)
	assert.False(t, f.State().Page.HasNext())
	assert.Equal(t, 2, f.Prev(ctx).Page.PageNumber)

	st := f.SetTable(ctx, "Humidity")
	assert.Equal(t, 1, st.Page.PageNumber)
	assert.Equal(t, "Humidity", src.queries[len(src.queries)-1].Table)
}

func TestTokenChangedWithoutTokenClears(t *testing.T) {
	src := &fakeSource{total: 5}
	tok := &mutableToken{v: "tok"}
	f := NewFetcher(src, tok)
	ctx := context.Background()

	require.Len(t, f.SetTable(ctx, "Temperature").Page.Rows, 5)
	tok.v = ""
	st := f.TokenChanged(ctx)
	assert.ErrorIs(t, st.Err, apperr.Auth)
	assert.Empty(t, st.Page.Rows)
	assert.Equal(t, 1, src.calls())
}

type mutableToken struct{ v string }

func (m *mutableToken) Token() string { return m.v }

// gatedSource blocks each table's request until released.
type gatedSource struct {
	entered chan string
	gates   map[string]chan struct{}
}

func (g *gatedSource) FetchPage(_ context.Context, _ string, q backend.PageQuery) (*backend.DataPage, error) {
	g.entered <- q.Table
	<-g.gates[q.Table]
	return &backend.DataPage{
		Rows:       []backend.Row{{"table": q.Table}},
		KeyOrder:   []string{"table"},
		TotalItems: 1,
	}, nil
}

func TestStaleResponseDiscarded(t *testing.T) {
	src := &gatedSource{
		entered: make(chan string),
		gates:   map[string]chan struct{}{"Temperature": make(chan struct{}), "Humidity": make(chan struct{})},
	}
	f := NewFetcher(src, staticToken("tok"))
	ctx := context.Background()

	first := make(chan State, 1)
	go func() { first <- f.SetTable(ctx, "Temperature") }()
	require.Equal(t, "Temperature", <-src.entered)

	second := make(chan State, 1)
	go func() { second <- f.SetTable(ctx, "Humidity") }()
	require.Equal(t, "Humidity", <-src.entered)
	assert.True(t, f.State().Loading)

	// Newer request settles first, older one last.
	close(src.gates["Humidity"])
	latest := <-second
	assert.Equal(t, "Humidity", latest.Page.Rows[0]["table"])

	close(src.gates["Temperature"])
	stale := <-first
	assert.Equal(t, "Humidity", stale.Table)
	assert.Equal(t, "Humidity", f.State().Page.Rows[0]["table"])
	assert.Equal(t, "Humidity", f.State().Table)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"21.5", "21.5"},
		{json.Number("22"), "22"},
		{true, "true"},
		{false, "false"},
		{json.RawMessage(`{"a":1}`), `{"a":1}`},
		{3, "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}

	p := Page{Rows: []backend.Row{{"a": "x"}, {}}}
	assert.Equal(t, "x", p.Cell(0, "a"))
	assert.Equal(t, "", p.Cell(1, "a"))
	assert.Equal(t, "", p.Cell(5, "a"))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, Page{TotalCount: 0, PageSize: 10}.TotalPages())
	assert.Equal(t, 1, Page{TotalCount: 10, PageSize: 10}.TotalPages())
	assert.Equal(t, 2, Page{TotalCount: 11, PageSize: 10}.TotalPages())
}
