// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sensorctl/cli/internal/logging"
)

// interactive reports whether stdout is a terminal.
func interactive() bool {
	return logging.IsTerminal(os.Stdout)
}

// withSpinner runs fn while a spinner shows text. Off a terminal it just runs fn.
func withSpinner(text string, fn func() error) error {
	if !interactive() {
		return fn()
	}
	cursor.Hide()
	defer cursor.Show()

	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	ferr := fn()
	_ = sp.Stop()
	return ferr
}

// prompt asks for a value unless one was given on the command line.
func prompt(given, label string, masked bool) (string, error) {
	if given != "" {
		return given, nil
	}
	if !interactive() {
		return "", errors.New(strings.ToLower(label) + " is required when not running in a terminal")
	}
	in := pterm.DefaultInteractiveTextInput
	if masked {
		in = *in.WithMask("*")
	}
	return in.Show(label)
}

// readSecret reads one line from r, for --password-stdin.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
