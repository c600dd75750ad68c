// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"sensorctl/cli/internal/auth"
	"sensorctl/cli/internal/guard"
)

var (
	loginPhone         string
	loginPasswordStdin bool
)

// loginCmd exchanges a phone number and password for a bearer token.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your phone number and password",
	Long: `The login command exchanges your phone number and password for an access token
and stores it in the OS keychain. Later commands reuse the stored token until you
run 'sensorctl logout'.

If you are already logged in, the command shows your account and tables instead.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRoute: guard.RouteLogin},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		phone, password, err := readCredentials(loginPhone, loginPasswordStdin)
		if err != nil {
			return err
		}
		if err := auth.ValidateCredentials(phone, password); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		// The guard lands on the dashboard once the session is installed.
		return withSpinner("Signing in", func() error {
			return a.session.Login(ctx, phone, password)
		})
	}),
}

func readCredentials(phone string, passwordStdin bool) (string, string, error) {
	phone, err := prompt(phone, "Phone number", false)
	if err != nil {
		return "", "", err
	}
	var password string
	if passwordStdin {
		password, err = readSecret(os.Stdin)
	} else {
		password, err = prompt("", "Password", true)
	}
	if err != nil {
		return "", "", err
	}
	return phone, password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "Phone number (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}
