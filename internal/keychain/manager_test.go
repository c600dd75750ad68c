// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(keyring.NewArrayKeyring(nil))

	tok, err := m.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, m.SaveToken("header.payload.sig"))
	tok, err = m.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", tok)

	require.NoError(t, m.ClearToken())
	tok, err = m.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, tok)

	// Clearing twice stays quiet.
	require.NoError(t, m.ClearToken())
}

func TestManagerRejectsEmptyToken(t *testing.T) {
	m := NewManager(keyring.NewArrayKeyring(nil))
	assert.Error(t, m.SaveToken("  "))
}

func TestAllowedBackends(t *testing.T) {
	tests := []struct {
		name    string
		want    []keyring.BackendType
		wantErr bool
	}{
		{name: "file", want: []keyring.BackendType{keyring.FileBackend}},
		{name: "Pass", want: []keyring.BackendType{keyring.PassBackend}},
		{name: "secret-service", want: []keyring.BackendType{keyring.SecretServiceBackend}},
		{name: "floppy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := allowedBackends(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	auto, err := allowedBackends("auto")
	require.NoError(t, err)
	assert.Equal(t, keyring.FileBackend, auto[len(auto)-1])
}

func TestOpenFileBackend(t *testing.T) {
	m, err := Open(Options{Backend: "file", FileDir: t.TempDir(), Password: "test"})
	require.NoError(t, err)

	require.NoError(t, m.SaveToken("a.b.c"))
	tok, err := m.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)
}
