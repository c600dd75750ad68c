// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe persistence for the bearer token.
// It wraps the OS keychain/credential store (macOS Keychain, Windows Credential
// Manager, Secret Service, KWallet, pass) and falls back to an encrypted file
// under the XDG state dir when no native store is reachable.
//
// Exactly one string is stored, under KeyAccessToken. Only the session store
// writes or removes it.
package keychain

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	"sensorctl/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sensorctl"

// KeyAccessToken is the well-known key holding the persisted bearer token.
const KeyAccessToken = "accessToken"

// defaultFilePassword unlocks the file backend when no password is configured.
// The file backend is the equivalent of browser local storage: private to the
// user account, not a secret vault.
const defaultFilePassword = ServiceName

// Manager provides centralized, thread-safe operations for the token store.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Options selects the keyring backend.
type Options struct {
	// Backend is "auto" or one of the keyring backend names.
	Backend string
	// FileDir overrides the file backend directory.
	FileDir string
	// Password unlocks the file backend.
	Password string
}

// NewManager wraps an already opened keyring. Tests pass keyring.NewArrayKeyring.
func NewManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// Open opens the keyring described by opts.
func Open(opts Options) (*Manager, error) {
	backends, err := allowedBackends(opts.Backend)
	if err != nil {
		return nil, err
	}

	fileDir := opts.FileDir
	if fileDir == "" {
		state, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		fileDir = filepath.Join(state, "keyring")
	}
	password := opts.Password
	if password == "" {
		password = defaultFilePassword
	}

	cfg := keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  backends,
		PassPrefix:       ServiceName,
		WinCredPrefix:    ServiceName,
		KeychainName:     "login",
		FileDir:          fileDir,
		FilePasswordFunc: keyring.FixedStringPrompt(password),
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open token store (%s): %w", strings.Join(backendNames(backends), ", "), err)
	}
	return NewManager(ring), nil
}

// allowedBackends maps a configured backend name to keyring backend types.
// "auto" prefers the platform's native store and keeps the file backend last.
func allowedBackends(name string) ([]keyring.BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		switch runtime.GOOS {
		case "darwin":
			return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}, nil
		case "windows":
			return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}, nil
		default:
			return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend, keyring.FileBackend}, nil
		}
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "secret-service", "secretservice":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "kwallet":
		return []keyring.BackendType{keyring.KWalletBackend}, nil
	case "pass":
		return []keyring.BackendType{keyring.PassBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("unknown keyring backend %q", name)
	}
}

func backendNames(bs []keyring.BackendType) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, string(b))
	}
	return out
}

// LoadToken retrieves the persisted token. A missing token yields ("", nil).
// This method is thread-safe.
func (m *Manager) LoadToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyAccessToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(it.Data)), nil
}

// SaveToken stores the token, replacing any previous value.
// This method is thread-safe.
func (m *Manager) SaveToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty access token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{
		Key:         KeyAccessToken,
		Data:        []byte(token),
		Label:       ServiceName + " access token",
		Description: "Bearer token for the sensor data API",
	})
}

// ClearToken removes the persisted token. Removing a missing token is not an error.
// This method is thread-safe.
func (m *Manager) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(KeyAccessToken); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
