// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains network and server failures to the user.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	apperr "sensorctl/cli/internal/errors"
)

// Category is a coarse class of transport failure.
type Category int

const (
	Other Category = iota
	Timeout
	DNS
	Refused
	TLS
	Server
)

// Classify sorts a transport error into a Category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Other
	case isTimeout(err):
		return Timeout
	case isDNS(err):
		return DNS
	case isRefused(err):
		return Refused
	case isTLS(err):
		return TLS
	case isServer(err):
		return Server
	}
	return Other
}

// Relevant reports whether err deserves the troubleshooting text: a network
// failure or a 5xx response. Client errors carry their own message.
func Relevant(err error) bool {
	if apperr.KindOf(err) != apperr.KindTransport {
		return false
	}
	var e *apperr.E
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status >= 500
	}
	return true
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNS(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLS(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") || strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate") || strings.Contains(s, "handshake")
}

func isServer(err error) bool {
	var e *apperr.E
	return errors.As(err, &e) && e.Status >= 500
}

// Explain returns the troubleshooting text for err. action describes what was
// being attempted ("loading tables"); host is the backend host.
func Explain(err error, action, host string) string {
	var b strings.Builder
	line := func(s string) { b.WriteString(s + "\n") }

	switch Classify(err) {
	case Timeout:
		line("⏱️  Connection timeout while " + action)
		line("")
		line("The server took too long to respond. This could mean:")
		line("  • Slow network connection")
		line("  • Server is under heavy load")
		line("  • A firewall is dropping the connection")
	case DNS:
		line("🌐 Cannot resolve server address while " + action)
		line("")
		line("Unable to look up " + host + ". Please check:")
		line("  • The api_url in your config or --api-url")
		line("  • Your DNS settings")
	case Refused:
		line("🚫 Connection refused while " + action)
		line("")
		line("Nothing is accepting connections at " + host + ". This could mean:")
		line("  • The backend is not running")
		line("  • Wrong server address or port")
		line("  • A firewall is blocking the connection")
	case TLS:
		line("🔒 Secure connection failed while " + action)
		line("")
		line("Cannot establish an HTTPS connection to " + host + ". Try:")
		line("  • Checking your system date and time")
		line("  • Checking proxy settings")
	case Server:
		line("⚠️  Server error while " + action)
		line("")
		line("The backend at " + host + " failed to handle the request.")
		line("Please try again in a few minutes.")
	default:
		line("❌ Cannot reach the backend while " + action)
		line("")
		line("Please check that " + host + " is reachable from your network.")
	}
	return b.String()
}

// Print writes Explain's text with pterm and the technical detail at debug level.
func Print(err error, action, host string) {
	pterm.Print(Explain(err, action, host))
	detail := err.Error()
	if len(detail) > 100 {
		detail = detail[:100] + "..."
	}
	pterm.Debug.Printf("Technical details: %s\n", detail)
}

// HostFromURL extracts the host of a URL for messages.
func HostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
