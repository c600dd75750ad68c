// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/auth"
	"sensorctl/cli/internal/logging"
	"sensorctl/cli/internal/table"
	"sensorctl/cli/internal/terminal"
)

var (
	dataPage        int
	dataInteractive bool
)

var dataCmd = &cobra.Command{
	Use:   "data <table>",
	Short: "Show a page of rows from a table",
	Long: `The data command prints one page of a table. Columns are taken from the rows the
server returns, so any table can be shown. With --interactive you can page back
and forth and switch tables without re-running the command.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationRoute: "/data"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		f := table.NewFetcher(a.api, a.session, table.WithPageSize(a.cfg.PageSize), table.WithLogger(a.log))
		ctx := cmd.Context()

		var st table.State
		load := func(step func(context.Context) table.State) {
			_ = withSpinner("Loading data", func() error {
				c, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()
				st = step(c)
				return nil
			})
		}

		load(func(c context.Context) table.State { return f.SetTable(c, args[0]) })
		if dataPage > 1 && st.Err == nil {
			load(func(c context.Context) table.State { return f.SetPage(c, dataPage) })
		}

		if !dataInteractive || !interactive() {
			if st.Err != nil {
				return st.Err
			}
			pterm.Print(pageText(st))
			return nil
		}
		tokenChanged, stop := watchToken(a.session)
		defer stop()
		return pager(ctx, a, f, st, load, tokenChanged)
	}),
}

// watchToken reports, once per change, whether the session token moved since
// the last call. No pager action changes the token today, so this only fires
// if a session change lands while the pager is open.
func watchToken(s *auth.Store) (changed func() bool, stop func()) {
	var (
		mu    sync.Mutex
		last  = s.Token()
		dirty atomic.Bool
	)
	stop = s.Subscribe(func(snap auth.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Token != last {
			last = snap.Token
			dirty.Store(true)
		}
	})
	return func() bool { return dirty.Swap(false) }, stop
}

const (
	optNext  = "Next page"
	optPrev  = "Previous page"
	optFirst = "First page"
	optLast  = "Last page"
	optTable = "Switch table"
	optRetry = "Retry"
	optQuit  = "Quit"
)

func pager(ctx context.Context, a *app, f *table.Fetcher, st table.State, load func(func(context.Context) table.State), tokenChanged func() bool) error {
	// printed is how many rows the previous screen took, so it can be erased.
	printed := 0
	width := terminal.Width(os.Stdout)
	for {
		if tokenChanged() {
			load(f.TokenChanged)
			st = f.State()
		}
		terminal.ClearLines(os.Stdout, printed)
		screen := pageText(st)
		if st.Err != nil {
			screen = pterm.Error.Sprintln(logging.PresentError("", st.Err))
		}
		pterm.Print(screen)
		// +1 for the line the selector leaves behind.
		printed = terminal.Lines(screen, width) + 1

		var opts []string
		if st.Err != nil {
			opts = append(opts, optRetry)
		}
		if st.Page.HasNext() {
			opts = append(opts, optNext, optLast)
		}
		if st.Page.HasPrev() {
			opts = append(opts, optPrev, optFirst)
		}
		opts = append(opts, optTable, optQuit)

		choice, err := pterm.DefaultInteractiveSelect.WithOptions(opts).Show("Navigate")
		if err != nil {
			return err
		}
		switch choice {
		case optNext:
			load(f.Next)
		case optPrev:
			load(f.Prev)
		case optFirst:
			load(func(c context.Context) table.State { return f.SetPage(c, 1) })
		case optLast:
			last := st.Page.TotalPages()
			load(func(c context.Context) table.State { return f.SetPage(c, last) })
		case optRetry:
			load(f.Refresh)
		case optTable:
			name, err := pickTable(ctx, a, st.Table)
			if err != nil {
				pterm.Error.Println(logging.PresentError("Could not load tables", err))
				printed = 0
				continue
			}
			printed++
			load(func(c context.Context) table.State { return f.SetTable(c, name) })
		case optQuit:
			return nil
		}
		st = f.State()
	}
}

func pickTable(ctx context.Context, a *app, current string) (string, error) {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	tables, err := a.api.ListTables(c, a.session.Token())
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables available")
	}
	sel := pterm.DefaultInteractiveSelect.WithOptions(tables)
	for _, t := range tables {
		if t == current {
			sel = sel.WithDefaultOption(current)
		}
	}
	return sel.Show("Table")
}

// pageText renders st as a table with a pagination footer.
func pageText(st table.State) string {
	p := st.Page
	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(st.Table) + "\n")
	if len(p.Rows) == 0 {
		b.WriteString(pterm.Info.Sprintln("No data found."))
		return b.String()
	}

	data := pterm.TableData{p.Columns}
	for i := range p.Rows {
		line := make([]string, len(p.Columns))
		for j, col := range p.Columns {
			line[j] = p.Cell(i, col)
		}
		data = append(data, line)
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		rendered = err.Error()
	}
	b.WriteString(rendered + "\n")
	b.WriteString(fmt.Sprintf("Page %d of %d · %d rows\n", p.PageNumber, p.TotalPages(), p.TotalCount))
	return b.String()
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.Flags().IntVarP(&dataPage, "page", "p", 1, "Page number")
	dataCmd.Flags().BoolVarP(&dataInteractive, "interactive", "i", false, "Page through the table interactively")
}
