// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the sensor data API.
// It defines the API contract for authentication, table browsing, import and export.
// The package includes both interface definitions and HTTP-based implementations.
package backend

import (
	"context"
	"io"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// Login exchanges credentials for a bearer token. No Authorization header is sent.
	Login(ctx context.Context, identifier, secret string) (accessToken string, err error)
	// Register creates an account. No Authorization header is sent.
	Register(ctx context.Context, phoneNumber, password string) error
	// ListTables returns the server-side table names in server order.
	ListTables(ctx context.Context, accessToken string) ([]string, error)
	// FetchPage reads one page of rows from table.
	FetchPage(ctx context.Context, accessToken string, q PageQuery) (*DataPage, error)
	// Import uploads a pre-assembled multipart body and returns the server message.
	Import(ctx context.Context, accessToken string, body io.Reader, contentType string) (message string, err error)
	// Export requests the server-rendered export of table. The caller closes the body.
	Export(ctx context.Context, accessToken, table, format string) (*ExportPayload, error)
}
