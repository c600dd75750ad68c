// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the client session: the bearer token, the identity decoded
// from it, and the registration flow.
//
// A Store is constructed explicitly and handed to every component that needs a
// token. Only the Store writes the token, and only from Login, Logout and Init.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	apperr "sensorctl/cli/internal/errors"
)

// TokenStore persists the bearer token across runs.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, identifier, secret string) (string, error)
}

// Identity is the user decoded from the token.
type Identity struct {
	Subject string
}

// Event names the transition that produced a Snapshot.
type Event int

const (
	EventRehydrated Event = iota
	EventLoginStarted
	EventLoggedIn
	EventLoginFailed
	EventLoggedOut
)

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Token    string
	Identity *Identity
	Loading  bool
	// Ready is false until Init has run.
	Ready bool
	Event Event
}

// Authenticated reports whether a token is present.
func (s Snapshot) Authenticated() bool { return s.Token != "" }

// ErrLoginInProgress rejects a Login issued while another is in flight.
var ErrLoginInProgress = apperr.New(apperr.KindAuth, "a login is already in progress")

// ErrDisposed is returned by operations on a disposed Store.
var ErrDisposed = apperr.New(apperr.KindAuth, "session is closed")

// Store holds the current session. It is safe for concurrent use.
type Store struct {
	tokens TokenStore
	authn  Authenticator
	log    zerolog.Logger

	mu        sync.Mutex
	token     string
	identity  *Identity
	loading   bool
	ready     bool
	disposed  bool
	last      Event
	listeners map[int]func(Snapshot)
	nextID    int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) StoreOption { return func(s *Store) { s.log = l } }

// NewStore creates an empty, not yet initialized Store.
func NewStore(tokens TokenStore, authn Authenticator, opts ...StoreOption) *Store {
	s := &Store{
		tokens:    tokens,
		authn:     authn,
		log:       zerolog.Nop(),
		listeners: map[int]func(Snapshot){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init rehydrates the session from persisted storage. It never touches the
// network. A stored token that does not decode to a subject is purged.
// Calling Init again re-reads storage and yields the same state.
//
// A storage read error leaves the session empty and is returned; the Store is
// still marked ready so guards can make decisions.
func (s *Store) Init() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.mu.Unlock()

	tok, loadErr := s.tokens.LoadToken()
	var identity *Identity
	if loadErr != nil {
		s.log.Warn().Err(loadErr).Msg("could not read persisted token")
		tok = ""
	} else if tok != "" {
		sub, err := Subject(tok)
		if err != nil {
			s.log.Warn().Err(err).Msg("persisted token is invalid, purging")
			if cerr := s.tokens.ClearToken(); cerr != nil {
				s.log.Warn().Err(cerr).Msg("could not purge persisted token")
			}
			tok = ""
		} else {
			identity = &Identity{Subject: sub}
		}
	}

	s.mu.Lock()
	s.token = tok
	s.identity = identity
	s.ready = true
	snap := s.snapshotLocked(EventRehydrated)
	s.mu.Unlock()

	s.log.Debug().Bool("authenticated", snap.Authenticated()).Msg("session rehydrated")
	s.notify(snap)
	if loadErr != nil {
		return apperr.Wrap(apperr.KindAuth, "could not read persisted token", loadErr)
	}
	return nil
}

// Dispose drops in-memory state and listeners. The persisted token is kept so
// the next process can rehydrate it.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.token = ""
	s.identity = nil
	s.listeners = map[int]func(Snapshot){}
}

// Login exchanges credentials for a token, persists it and installs the
// decoded identity. On any failure the session, persisted token included, is
// reset to empty before the error is returned. A second Login while one is in
// flight fails with ErrLoginInProgress.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	s.mu.Lock()
	switch {
	case s.disposed:
		s.mu.Unlock()
		return ErrDisposed
	case s.loading:
		s.mu.Unlock()
		return ErrLoginInProgress
	}
	s.loading = true
	snap := s.snapshotLocked(EventLoginStarted)
	s.mu.Unlock()
	s.notify(snap)

	tok, sub, err := s.exchange(ctx, identifier, secret)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.token = ""
		s.identity = nil
		snap = s.snapshotLocked(EventLoginFailed)
		s.mu.Unlock()

		if cerr := s.tokens.ClearToken(); cerr != nil {
			s.log.Warn().Err(cerr).Msg("could not clear persisted token after failed login")
		}
		s.log.Debug().Err(err).Msg("login failed")
		s.notify(snap)
		return err
	}
	s.token = tok
	s.identity = &Identity{Subject: sub}
	snap = s.snapshotLocked(EventLoggedIn)
	s.mu.Unlock()

	s.log.Debug().Str("subject", sub).Msg("logged in")
	s.notify(snap)
	return nil
}

func (s *Store) exchange(ctx context.Context, identifier, secret string) (string, string, error) {
	tok, err := s.authn.Login(ctx, identifier, secret)
	if err != nil {
		return "", "", err
	}
	sub, err := Subject(tok)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindAuth, "Login failed: Invalid token received", err)
	}
	if err := s.tokens.SaveToken(tok); err != nil {
		return "", "", apperr.Wrap(apperr.KindAuth, "Login failed: could not store token", err)
	}
	return tok, sub, nil
}

// Logout clears the session and the persisted token and notifies listeners.
// It is a no-op without an active session.
func (s *Store) Logout() error {
	s.mu.Lock()
	if s.token == "" && s.identity == nil {
		s.mu.Unlock()
		return nil
	}
	s.token = ""
	s.identity = nil
	snap := s.snapshotLocked(EventLoggedOut)
	s.mu.Unlock()

	err := s.tokens.ClearToken()
	s.notify(snap)
	return err
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns the decoded identity, if any.
func (s *Store) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Snapshot returns a copy of the current state, tagged with the last event.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.last)
}

// Subscribe registers fn to be called after every state change.
// fn runs on the goroutine that made the change and must not call Login.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) snapshotLocked(ev Event) Snapshot {
	s.last = ev
	snap := Snapshot{Token: s.token, Loading: s.loading, Ready: s.ready, Event: ev}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
