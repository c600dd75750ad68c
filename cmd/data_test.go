// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTokenReportsLogoutOnce(t *testing.T) {
	a, ring := newTestApp(t, "/data")
	tok := "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"5551234567"}`)) + ".s"
	require.NoError(t, ring.SaveToken(tok))
	require.NoError(t, a.session.Init())

	changed, stop := watchToken(a.session)
	defer stop()
	assert.False(t, changed())

	require.NoError(t, a.session.Logout())
	assert.True(t, changed())
	assert.False(t, changed())

	// a second logout is a no-op and must not re-trigger a reload
	require.NoError(t, a.session.Logout())
	assert.False(t, changed())
}

func TestWatchTokenStop(t *testing.T) {
	a, ring := newTestApp(t, "/data")
	tok := "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"5551234567"}`)) + ".s"
	require.NoError(t, ring.SaveToken(tok))
	require.NoError(t, a.session.Init())

	changed, stop := watchToken(a.session)
	stop()

	require.NoError(t, a.session.Logout())
	assert.False(t, changed())
}
