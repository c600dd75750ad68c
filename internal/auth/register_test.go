// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "sensorctl/cli/internal/errors"
)

type fakeRegistrar struct {
	calls int
	phone string
	err   error
}

func (f *fakeRegistrar) Register(_ context.Context, phone, _ string) error {
	f.calls++
	f.phone = phone
	return f.err
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		password string
		wantMsg  string
	}{
		{name: "ok", phone: "5551234567", password: "secret12"},
		{name: "short phone", phone: "555123", password: "secret12", wantMsg: "Phone number must be at least 10 digits"},
		{name: "letters", phone: "555123456x", password: "secret12", wantMsg: "Phone number must contain only digits"},
		{name: "plus prefix", phone: "+15551234567", password: "secret12", wantMsg: "Phone number must contain only digits"},
		{name: "short password", phone: "5551234567", password: "abc", wantMsg: "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.phone, tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.Validation)
			assert.Equal(t, tt.wantMsg, apperr.Message(err))
		})
	}
}

func TestServiceRegister(t *testing.T) {
	be := &fakeRegistrar{}
	svc := NewService(be)

	err := svc.Register(context.Background(), "123", "secret12")
	require.Error(t, err)
	assert.Equal(t, 0, be.calls)

	require.NoError(t, svc.Register(context.Background(), " 5551234567 ", "secret12"))
	assert.Equal(t, 1, be.calls)
	assert.Equal(t, "5551234567", be.phone)

	be.err = apperr.New(apperr.KindAuth, "Phone number already registered")
	err = svc.Register(context.Background(), "5551234567", "secret12")
	assert.Equal(t, "Phone number already registered", apperr.Message(err))
}
