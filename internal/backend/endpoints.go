// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/url"
	"strings"
)

// APIPrefix is the versioned prefix every endpoint lives under.
const APIPrefix = "/api/v1"

// Endpoints contains REST API endpoint paths relative to the base URL.
type Endpoints struct {
	Login    string // e.g., "/api/v1/auth/login"
	Register string // e.g., "/api/v1/auth/register"
	Tables   string // e.g., "/api/v1/data/tables"
	Data     string // e.g., "/api/v1/data"
	Import   string // e.g., "/api/v1/data/import"
	Export   string // e.g., "/api/v1/data/export"
}

// DefaultEndpoints returns the paths served by the sensor data API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    APIPrefix + "/auth/login",
		Register: APIPrefix + "/auth/register",
		Tables:   APIPrefix + "/data/tables",
		Data:     APIPrefix + "/data",
		Import:   APIPrefix + "/data/import",
		Export:   APIPrefix + "/data/export",
	}
}

// NormalizeBaseURL trims trailing slashes and a trailing API prefix so that
// both "http://host:8000" and "http://host:8000/api/v1/" resolve the same way.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	base = strings.TrimSuffix(base, APIPrefix)
	return strings.TrimRight(base, "/")
}

// Host extracts the hostname from a base URL for error messages.
func Host(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
