// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/exporter"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <table>",
	Short: "Download a table as CSV or spreadsheet, or view it as JSON",
	Long: `The export command asks the server to render a whole table. CSV and spreadsheet
exports are saved as <table>.csv or <table>.xlsx in the download directory
(config "download_dir", or --out). JSON exports are printed for reading.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationRoute: "/export"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		format, ok := exporter.ParseFormat(exportFormat)
		if !ok {
			return errors.New("unknown format " + exportFormat + " (use csv, spreadsheet or json)")
		}
		dir := exportOut
		if dir == "" {
			dir = a.cfg.DownloadDir
		}

		viewer := exporter.TerminalViewer{Out: os.Stdout, Color: interactive()}
		ex := exporter.New(a.api, a.session, viewer, exporter.FileSaver{Dir: dir}, exporter.WithLogger(a.log))

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		if format == exporter.FormatJSON {
			// No spinner: the document is written to the same terminal.
			_, err := ex.Request(ctx, args[0], format)
			return err
		}

		var res exporter.Result
		err := withSpinner("Exporting "+args[0], func() (err error) {
			res, err = ex.Request(ctx, args[0], format)
			return err
		})
		if err != nil {
			return err
		}
		pterm.Success.Printf("Saved %s\n", res.Path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, spreadsheet or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Directory for saved exports")
}
