// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/auth"
	"sensorctl/cli/internal/backend"
	"sensorctl/cli/internal/config"
	apperr "sensorctl/cli/internal/errors"
	"sensorctl/cli/internal/guard"
	"sensorctl/cli/internal/keychain"
	"sensorctl/cli/internal/logging"
)

// annotationRoute marks a command as a guarded route. Commands without it
// bypass the guard.
const annotationRoute = "route"

// annotationSession marks an unguarded command that still needs the session.
const annotationSession = "session"

type appKey struct{}

// app is the composition root for one invocation.
type app struct {
	// ctx is the invoking command's context; backend calls made outside a
	// command body derive from it.
	ctx     context.Context
	cfg     config.Config
	log     zerolog.Logger
	api     backend.API
	session *auth.Store
	guard   *guard.Guard

	unsubscribe func()
	// booting is set while the startup route is evaluated.
	booting bool
	// landed is set when the guard moved away from the invoked command.
	landed bool
}

func routeOf(cmd *cobra.Command) guard.Route {
	return guard.Route(cmd.Annotations[annotationRoute])
}

func needsSession(cmd *cobra.Command) bool {
	return routeOf(cmd) != "" || cmd.Annotations[annotationSession] != ""
}

// newApp wires config, logging, backend and session for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := logging.New(os.Stderr, cfg.LogLevel, verbose)
	if verbose {
		pterm.EnableDebugMessages()
	}

	ring, err := keychain.Open(keychain.Options{
		Backend:  cfg.Keyring.Backend,
		FileDir:  cfg.Keyring.FileDir,
		Password: cfg.Keyring.Password,
	})
	if err != nil {
		return nil, err
	}

	a := &app{ctx: cmd.Context(), cfg: cfg, log: log}
	a.api = backend.New(cfg.APIURL, backend.WithLogger(log))
	a.session = auth.NewStore(ring, a.api, auth.WithLogger(log))
	a.guard = guard.New(&navigator{a: a}, routeOf(cmd))
	return a, nil
}

// start rehydrates the session and evaluates the invoked route.
func (a *app) start(route guard.Route) error {
	var navErr error
	a.unsubscribe = a.session.Subscribe(func(s auth.Snapshot) {
		if err := a.guard.Observe(s); err != nil {
			navErr = err
		}
	})

	a.booting = true
	defer func() { a.booting = false }()

	if err := a.session.Init(); err != nil {
		a.log.Warn().Err(err).Msg("continuing without a stored session")
	}
	if navErr != nil {
		return navErr
	}
	a.landed = route != "" && a.guard.Route() != route
	return nil
}

func (a *app) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *app) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.session.Dispose()
}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

func appFrom(cmd *cobra.Command) (*app, error) {
	if cmd == nil || cmd.Context() == nil {
		return nil, errors.New("internal error: command started without session")
	}
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, errors.New("internal error: command started without session")
	}
	return a, nil
}

// runWithApp adapts a command body that needs the app. It does nothing when
// the guard already redirected elsewhere.
func runWithApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if a.landed {
			return nil
		}
		return fn(cmd, args, a)
	}
}

// navigator turns guard redirects into terminal output.
type navigator struct {
	a *app
}

func (n *navigator) Navigate(to, from guard.Route) error {
	switch to {
	case guard.RouteLogin:
		if from == "" {
			n.a.log.Debug().Msg("session ended")
			return nil
		}
		return apperr.New(apperr.KindAuth, "You're not logged in. Run 'sensorctl login' first.")
	case guard.RouteDashboard:
		return n.a.dashboard()
	}
	return nil
}

// dashboard is the landing view for a logged-in user: who they are and which
// tables exist.
func (a *app) dashboard() error {
	id, _ := a.session.Identity()
	if a.booting {
		pterm.Printf("Already logged in as %s\n", pterm.Bold.Sprint(id.Subject))
	} else {
		pterm.Success.Printf("Logged in as %s\n", id.Subject)
	}

	ctx, cancel := context.WithTimeout(a.context(), requestTimeout)
	defer cancel()
	tables, err := a.api.ListTables(ctx, a.session.Token())
	if err != nil {
		pterm.Warning.Println(logging.PresentError("Could not load tables", err))
		return nil
	}
	pterm.Println()
	renderTableList(tables, "")
	return nil
}
