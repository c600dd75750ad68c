// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperr "sensorctl/cli/internal/errors"
)

// ErrInvalidToken is returned when a bearer token cannot be decoded or carries
// no subject claim.
var ErrInvalidToken = apperr.New(apperr.KindAuth, "invalid token")

// Subject decodes the bearer token's payload segment and returns its "sub"
// claim.
//
// Only the payload is read. The header and signature are never inspected.
func Subject(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", errors.New("empty token"))
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", jwt.ErrTokenMalformed)
	}

	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", err)
	}
	if strings.TrimSpace(sub) == "" {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", errors.New("token has no subject claim"))
	}
	return sub, nil
}
