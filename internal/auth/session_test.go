// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorctl/cli/internal/backend"
	apperr "sensorctl/cli/internal/errors"
	"sensorctl/cli/internal/keychain"
)

// memTokens is an in-memory TokenStore with optional failure injection.
type memTokens struct {
	mu      sync.Mutex
	token   string
	loadErr error
	clears  int
}

func (m *memTokens) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.loadErr
}

func (m *memTokens) SaveToken(tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	return nil
}

func (m *memTokens) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.clears++
	return nil
}

type authnFunc func(ctx context.Context, id, secret string) (string, error)

func (f authnFunc) Login(ctx context.Context, id, secret string) (string, error) {
	return f(ctx, id, secret)
}

func staticAuthn(tok string, err error) Authenticator {
	return authnFunc(func(context.Context, string, string) (string, error) { return tok, err })
}

func TestLoginEndToEnd(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "5551234567"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "5551234567" || r.PostForm.Get("password") != "secret12" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect phone number or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"`+tok+`","token_type":"bearer"}`)
	}))
	t.Cleanup(srv.Close)

	ring := keyring.NewArrayKeyring(nil)
	tokens := keychain.NewManager(ring)
	store := NewStore(tokens, backend.New(srv.URL))
	require.NoError(t, store.Init())

	require.NoError(t, store.Login(context.Background(), "5551234567", "secret12"))

	id, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "5551234567", id.Subject)
	assert.Equal(t, tok, store.Token())

	item, err := ring.Get(keychain.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, tok, string(item.Data))

	// A fresh store over the same keyring rehydrates the session.
	next := NewStore(tokens, backend.New(srv.URL))
	require.NoError(t, next.Init())
	id, ok = next.Identity()
	require.True(t, ok)
	assert.Equal(t, "5551234567", id.Subject)

	// Wrong credentials clear everything.
	err = store.Login(context.Background(), "5551234567", "wrong1")
	require.Error(t, err)
	assert.Equal(t, "Incorrect phone number or password", apperr.Message(err))
	assert.Empty(t, store.Token())
	_, ok = store.Identity()
	assert.False(t, ok)
	_, err = ring.Get(keychain.KeyAccessToken)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestLoginRejectsTokenWithoutSubject(t *testing.T) {
	tokens := &memTokens{token: signed(t, jwt.MapClaims{"sub": "old"})}
	store := NewStore(tokens, staticAuthn(signed(t, jwt.MapClaims{"name": "x"}), nil))
	require.NoError(t, store.Init())
	require.True(t, store.Snapshot().Authenticated())

	err := store.Login(context.Background(), "5551234567", "secret12")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Auth)
	assert.Equal(t, "Login failed: Invalid token received", apperr.Message(err))
	assert.Empty(t, store.Token())
	assert.Empty(t, tokens.token)
}

func TestInitPurgesTokenWithoutSubject(t *testing.T) {
	tokens := &memTokens{token: signed(t, jwt.MapClaims{"name": "x"})}
	store := NewStore(tokens, staticAuthn("", nil))

	require.NoError(t, store.Init())
	snap := store.Snapshot()
	assert.True(t, snap.Ready)
	assert.False(t, snap.Authenticated())
	assert.Nil(t, snap.Identity)
	assert.Empty(t, tokens.token)
	assert.Equal(t, 1, tokens.clears)
}

func TestInitKeepsTokenWithOpaqueHeader(t *testing.T) {
	tok := "opaque." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"5551234567"}`)) + ".sig"
	tokens := &memTokens{token: tok}
	store := NewStore(tokens, staticAuthn("", nil))

	require.NoError(t, store.Init())
	snap := store.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "5551234567", snap.Identity.Subject)
	assert.Equal(t, tok, tokens.token)
	assert.Zero(t, tokens.clears)
}

func TestInitIsIdempotent(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "5551234567"})
	tokens := &memTokens{token: tok}
	store := NewStore(tokens, staticAuthn("", errors.New("network must not be used")))

	require.NoError(t, store.Init())
	first := store.Snapshot()
	require.NoError(t, store.Init())
	second := store.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, tok, second.Token)
	assert.Equal(t, "5551234567", second.Identity.Subject)
}

func TestInitStorageFailure(t *testing.T) {
	tokens := &memTokens{loadErr: errors.New("keychain locked")}
	store := NewStore(tokens, staticAuthn("", nil))

	err := store.Init()
	require.Error(t, err)
	snap := store.Snapshot()
	assert.True(t, snap.Ready)
	assert.False(t, snap.Authenticated())
}

func TestSnapshotBeforeInitIsNotReady(t *testing.T) {
	store := NewStore(&memTokens{}, staticAuthn("", nil))
	assert.False(t, store.Snapshot().Ready)
}

func TestConcurrentLoginRejected(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "5551234567"})
	entered := make(chan struct{})
	release := make(chan struct{})
	authn := authnFunc(func(context.Context, string, string) (string, error) {
		close(entered)
		<-release
		return tok, nil
	})
	store := NewStore(&memTokens{}, authn)
	require.NoError(t, store.Init())

	done := make(chan error, 1)
	go func() { done <- store.Login(context.Background(), "5551234567", "secret12") }()
	<-entered

	assert.True(t, store.Snapshot().Loading)
	err := store.Login(context.Background(), "5551234567", "secret12")
	assert.ErrorIs(t, err, ErrLoginInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, store.Snapshot().Loading)
	assert.Equal(t, tok, store.Token())
}

func TestLogout(t *testing.T) {
	tokens := &memTokens{token: signed(t, jwt.MapClaims{"sub": "5551234567"})}
	store := NewStore(tokens, staticAuthn("", nil))
	require.NoError(t, store.Init())

	var events []Event
	unsubscribe := store.Subscribe(func(s Snapshot) { events = append(events, s.Event) })

	require.NoError(t, store.Logout())
	assert.Empty(t, store.Token())
	assert.Empty(t, tokens.token)
	assert.Equal(t, []Event{EventLoggedOut}, events)

	// No session: nothing happens.
	require.NoError(t, store.Logout())
	assert.Equal(t, []Event{EventLoggedOut}, events)
	assert.Equal(t, 1, tokens.clears)

	unsubscribe()
	require.NoError(t, store.Init())
	assert.Len(t, events, 1)
}

func TestSubscribeSeesLoginTransitions(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "5551234567"})
	store := NewStore(&memTokens{}, staticAuthn(tok, nil))
	require.NoError(t, store.Init())

	var snaps []Snapshot
	store.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })
	require.NoError(t, store.Login(context.Background(), "5551234567", "secret12"))

	require.Len(t, snaps, 2)
	assert.Equal(t, EventLoginStarted, snaps[0].Event)
	assert.True(t, snaps[0].Loading)
	assert.Equal(t, EventLoggedIn, snaps[1].Event)
	assert.False(t, snaps[1].Loading)
	assert.Equal(t, "5551234567", snaps[1].Identity.Subject)
}

func TestDispose(t *testing.T) {
	tokens := &memTokens{token: signed(t, jwt.MapClaims{"sub": "5551234567"})}
	store := NewStore(tokens, staticAuthn("", nil))
	require.NoError(t, store.Init())

	store.Dispose()
	assert.Empty(t, store.Token())
	assert.NotEmpty(t, tokens.token)
	assert.ErrorIs(t, store.Login(context.Background(), "a", "b"), ErrDisposed)
}
