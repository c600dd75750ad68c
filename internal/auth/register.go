// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"strings"

	apperr "sensorctl/cli/internal/errors"
)

// Registrar creates accounts on the backend.
type Registrar interface {
	Register(ctx context.Context, phoneNumber, password string) error
}

// Service runs the registration flow. Registration never installs a session;
// the user logs in afterwards.
type Service struct {
	be Registrar
}

// NewService constructs a registration Service.
func NewService(be Registrar) *Service {
	return &Service{be: be}
}

// Register validates the credentials locally and creates the account.
func (s *Service) Register(ctx context.Context, phoneNumber, password string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := ValidateCredentials(phoneNumber, password); err != nil {
		return err
	}
	return s.be.Register(ctx, phoneNumber, password)
}

// ValidateCredentials applies the account rules shared by login and
// registration: a phone number of at least 10 digits and a password of at
// least 6 characters.
func ValidateCredentials(phoneNumber, password string) error {
	switch {
	case len(phoneNumber) < 10:
		return apperr.New(apperr.KindValidation, "Phone number must be at least 10 digits")
	case strings.Trim(phoneNumber, "0123456789") != "":
		return apperr.New(apperr.KindValidation, "Phone number must contain only digits")
	case len(password) < 6:
		return apperr.New(apperr.KindValidation, "Password must be at least 6 characters")
	}
	return nil
}
