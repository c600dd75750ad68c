// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/base64"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "sensorctl/cli/internal/errors"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestSubject(t *testing.T) {
	unknownAlg := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XYZ"}`)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"5551234567"}`)) + ".sig"
	payloadOnly := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"5551234567"}`))

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "signed", raw: signed(t, jwt.MapClaims{"sub": "5551234567", "exp": 4102444800}), want: "5551234567"},
		{name: "unknown alg", raw: unknownAlg, want: "5551234567"},
		{name: "opaque header", raw: "header." + payloadOnly + ".sig", want: "5551234567"},
		{name: "no signature segment", raw: "header." + payloadOnly, want: "5551234567"},
		{name: "single segment", raw: payloadOnly, wantErr: true},
		{name: "payload not json", raw: "h." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".s", wantErr: true},
		{name: "missing sub", raw: signed(t, jwt.MapClaims{"exp": 4102444800}), wantErr: true},
		{name: "blank sub", raw: signed(t, jwt.MapClaims{"sub": "  "}), wantErr: true},
		{name: "not a jwt", raw: "a.b.c", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subject(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.Auth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectIgnoresExpiry(t *testing.T) {
	sub, err := Subject(signed(t, jwt.MapClaims{"sub": "5551234567", "exp": 1}))
	require.NoError(t, err)
	assert.Equal(t, "5551234567", sub)
}
