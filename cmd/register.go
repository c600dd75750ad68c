// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/auth"
	"sensorctl/cli/internal/guard"
)

var (
	registerPhone         string
	registerPasswordStdin bool
)

var registerCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create an account",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRoute: guard.RouteRegister},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		phone, password, err := readCredentials(registerPhone, registerPasswordStdin)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		svc := auth.NewService(a.api)
		if err := withSpinner("Creating account", func() error {
			return svc.Register(ctx, phone, password)
		}); err != nil {
			return err
		}

		pterm.Success.Println("Registration successful!")
		pterm.Println("Run 'sensorctl login' to sign in.")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number (prompted when omitted)")
	registerCmd.Flags().BoolVar(&registerPasswordStdin, "password-stdin", false, "Read the password from stdin")
}
