// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the stored session. Running it while logged out does nothing.
var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Remove the stored access token",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSession: "true"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		if !a.session.Snapshot().Authenticated() {
			pterm.Info.Println("You're not logged in.")
			return nil
		}
		if err := a.session.Logout(); err != nil {
			return err
		}
		pterm.Success.Println("Logged out. The stored access token has been removed.")
		pterm.Println("Run 'sensorctl login' to sign in again.")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
