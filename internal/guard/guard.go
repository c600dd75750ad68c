// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides route admission from session state.
//
// Routes are plain paths. Public routes (login, registration) are reachable
// only while logged out; every other route requires a session. The decision
// itself is a pure function; Guard adds the "wait for rehydration" rule and
// forwards redirects to a Navigator.
package guard

import (
	"sync"

	"sensorctl/cli/internal/auth"
)

// Well-known routes.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
)

// Route is a navigable path.
type Route string

// Public reports whether r is reachable without a session.
func (r Route) Public() bool {
	return r == RouteLogin || r == RouteRegister
}

// Decision is the outcome of evaluating a route.
type Decision struct {
	// Redirect is the route to navigate to, or "" to stay.
	Redirect Route
}

// Stay reports whether no navigation is needed.
func (d Decision) Stay() bool { return d.Redirect == "" }

// Decide applies the admission rules:
//
//	logged out + protected -> login
//	logged in  + public    -> dashboard
//	anything else          -> stay
func Decide(authenticated bool, route Route) Decision {
	switch {
	case !authenticated && !route.Public():
		return Decision{Redirect: RouteLogin}
	case authenticated && route.Public():
		return Decision{Redirect: RouteDashboard}
	default:
		return Decision{}
	}
}

// Navigator performs redirects.
type Navigator interface {
	Navigate(to Route, from Route) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to, from Route) error

func (f NavigatorFunc) Navigate(to, from Route) error { return f(to, from) }

// Guard re-evaluates the current route whenever the session or the route
// changes. Until the session reports Ready it makes no decisions.
type Guard struct {
	nav Navigator

	mu      sync.Mutex
	route   Route
	session auth.Snapshot
}

// New creates a Guard that starts at route.
func New(nav Navigator, route Route) *Guard {
	return &Guard{nav: nav, route: route}
}

// Route returns the current route.
func (g *Guard) Route() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.route
}

// Observe records a session change and evaluates the current route. A logout
// always lands on the login route.
func (g *Guard) Observe(s auth.Snapshot) error {
	g.mu.Lock()
	g.session = s
	g.mu.Unlock()

	if s.Ready && s.Event == auth.EventLoggedOut {
		return g.navigate(RouteLogin)
	}
	return g.Evaluate()
}

// Visit moves to route and evaluates it.
func (g *Guard) Visit(route Route) error {
	g.mu.Lock()
	g.route = route
	g.mu.Unlock()
	return g.Evaluate()
}

// Evaluate applies Decide to the current state and navigates when needed.
// It does nothing while the session is still rehydrating or when no route is
// active.
func (g *Guard) Evaluate() error {
	g.mu.Lock()
	s, route := g.session, g.route
	g.mu.Unlock()

	if !s.Ready || route == "" {
		return nil
	}
	d := Decide(s.Authenticated(), route)
	if d.Stay() {
		return nil
	}
	return g.navigate(d.Redirect)
}

func (g *Guard) navigate(to Route) error {
	g.mu.Lock()
	from := g.route
	if from == to {
		g.mu.Unlock()
		return nil
	}
	g.route = to
	g.mu.Unlock()
	return g.nav.Navigate(to, from)
}
