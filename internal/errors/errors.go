// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure raised by the client core resolves to one of four kinds so the
// command layer can decide how to present it (and whether data shown alongside it
// must be cleared) without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindAuth covers a missing or invalid token and rejected login/registration.
	KindAuth Kind = "auth"
	// KindValidation covers local precondition failures that never reach the network.
	KindValidation Kind = "validation"
	// KindTransport covers non-success HTTP responses and network failures.
	KindTransport Kind = "transport"
	// KindDecode covers response bodies that cannot be parsed as expected.
	KindDecode Kind = "decode"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
	// Status is the HTTP status code for transport failures, zero otherwise.
	Status int
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same kind. This lets callers write
// errors.Is(err, apperr.Auth) against the sentinels below.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Kind sentinels for errors.Is.
var (
	Auth       = &E{Kind: KindAuth}
	Validation = &E{Kind: KindValidation}
	Transport  = &E{Kind: KindTransport}
	Decode     = &E{Kind: KindDecode}
)

// Status builds a transport error for a non-success HTTP response.
func Status(code int, msg string) *E {
	return &E{Kind: KindTransport, Message: msg, Status: code}
}

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the human-facing message of the first *E in err's chain,
// falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
