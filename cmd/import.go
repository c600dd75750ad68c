// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sensorctl/cli/internal/importer"
)

var (
	importTable    string
	importFormat   string
	importFile     string
	importJSON     string
	importJSONFile string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upload CSV, spreadsheet or JSON data into a table",
	Long: `The import command uploads data into a table. CSV and spreadsheet data come from
a file. JSON data is either pasted with --json (use "-" to read stdin) or read from
a .json file with --json-file.

Without --table the first table on the server is used.`,
	Example: `  sensorctl import --table Temperature --file readings.csv
  sensorctl import --table Humidity --format spreadsheet --file humidity.xlsx
  sensorctl import --table Pressure --json '[{"timestamp":"2024-05-01T10:00:00Z","value":1013}]'
  cat dump.json | sensorctl import --table Pressure --json -`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRoute: "/import"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		p := importer.New(a.api, a.session, importer.WithLogger(a.log))

		format, err := resolveImportFormat()
		if err != nil {
			return err
		}
		p.SetFormat(format)

		tableName, err := defaultTable(ctx, a, importTable)
		if err != nil {
			return err
		}
		p.SetTable(tableName)

		switch {
		case format != importer.FormatJSON:
			if importFile != "" {
				p.SelectFile(importer.LocalFile(importFile))
			}
		case importJSONFile != "" || importFile != "":
			path := importJSONFile
			if path == "" {
				path = importFile
			}
			p.SetJSONSource(importer.JSONFile)
			p.SelectFile(importer.LocalFile(path))
		default:
			p.SetJSONSource(importer.JSONPaste)
			text, err := pastedJSON(importJSON, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p.SetJSONText(text)
		}

		c, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		var msg string
		err = withSpinner("Importing into "+tableName, func() (err error) {
			msg, err = p.Submit(c)
			return err
		})
		if err != nil {
			return err
		}
		pterm.Success.Println(msg)
		return nil
	}),
}

// resolveImportFormat picks the format from --format or the given inputs.
func resolveImportFormat() (importer.Format, error) {
	if importFormat != "" {
		f, ok := importer.ParseFormat(importFormat)
		if !ok {
			return "", errors.New("unknown format " + importFormat + " (use csv, spreadsheet or json)")
		}
		return f, nil
	}
	switch {
	case importJSON != "" || importJSONFile != "":
		return importer.FormatJSON, nil
	case strings.HasSuffix(strings.ToLower(importFile), ".xlsx"), strings.HasSuffix(strings.ToLower(importFile), ".xls"):
		return importer.FormatSpreadsheet, nil
	case strings.HasSuffix(strings.ToLower(importFile), ".json"):
		return importer.FormatJSON, nil
	}
	return importer.FormatCSV, nil
}

// defaultTable returns want if the server lists it, otherwise the first table.
func defaultTable(ctx context.Context, a *app, want string) (string, error) {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	tables, err := a.api.ListTables(c, a.session.Token())
	if err != nil {
		if want != "" {
			a.log.Debug().Err(err).Msg("could not list tables, using requested table")
			return want, nil
		}
		return "", err
	}
	for _, t := range tables {
		if t == want {
			return want, nil
		}
	}
	if want != "" {
		pterm.Warning.Printf("Table %q is not listed by the server, using it anyway.\n", want)
		return want, nil
	}
	if len(tables) == 0 {
		return "", nil
	}
	return tables[0], nil
}

func pastedJSON(flag string, stdin io.Reader) (string, error) {
	if flag != "-" {
		return flag, nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importTable, "table", "t", "", "Target table")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "csv, spreadsheet or json (inferred from the input when omitted)")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV or spreadsheet file to upload")
	importCmd.Flags().StringVar(&importJSON, "json", "", `JSON text to upload, or "-" for stdin`)
	importCmd.Flags().StringVar(&importJSONFile, "json-file", "", "JSON file to upload")
	importCmd.MarkFlagsMutuallyExclusive("json", "json-file", "file")
}
