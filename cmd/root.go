// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sensorctl.
// Each subcommand is a screen of the sensor data client: it declares a route,
// the guard admits or redirects it based on the stored session, and the body
// drives the auth, table, importer and exporter packages.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/httperrors"
	"sensorctl/cli/internal/logging"
)

// requestTimeout bounds a single backend call made by a command.
const requestTimeout = 60 * time.Second

var (
	showVersion bool
	apiURL      string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sensorctl",
	Short: "Browse, import and export sensor tables",
	Long: `sensorctl is a terminal client for the sensor data API. It keeps a bearer-token
session in your OS keychain, lists and pages through server-side tables, and
imports or exports table data as CSV, spreadsheet or JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsSession(cmd) {
			return nil
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withApp(cmd.Context(), a))
		return a.start(routeOf(cmd))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a, err := appFrom(cmd); err == nil {
			a.close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sensorctl %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	if cmd, err := rootCmd.ExecuteC(); err != nil {
		reportError(cmd, err)
		os.Exit(1)
	}
}

func reportError(cmd *cobra.Command, err error) {
	if httperrors.Relevant(err) {
		host := httperrors.HostFromURL(apiURL)
		if a, aerr := appFrom(cmd); aerr == nil {
			host = httperrors.HostFromURL(a.cfg.APIURL)
		}
		httperrors.Print(err, "talking to the backend", host)
	}
	pterm.Error.Println(logging.PresentError("", err))
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config and SENSORCTL_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
