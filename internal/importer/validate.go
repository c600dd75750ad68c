// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	apperr "sensorctl/cli/internal/errors"
)

// sniffLimit bounds how much of a file local checks read.
const sniffLimit = 64 << 10

func invalid(msg string) error { return apperr.New(apperr.KindValidation, msg) }

// validate checks a form before anything is sent. Checks run in the order a
// user fixes them: input first, then the target table, then content.
func validate(f Form) error {
	switch {
	case f.Format != FormatJSON && f.File == nil:
		return invalid("Please select a file to import.")
	case f.Format == FormatJSON && f.JSONSource == JSONPaste && strings.TrimSpace(f.JSONText) == "":
		return invalid("Please enter JSON data to import.")
	case f.Format == FormatJSON && f.JSONSource == JSONFile && f.File == nil:
		return invalid("Please select a JSON file to import.")
	case strings.TrimSpace(f.Table) == "":
		return invalid("Please select a table to import data into.")
	}

	if !f.usesFile() {
		if !gjson.Valid(f.JSONText) {
			return invalid("Invalid JSON format. Please check your input.")
		}
		return nil
	}

	if !f.Format.accepts(f.File.Name) {
		return invalid("Unsupported file type for " + string(f.Format) + " import: " + f.File.Name +
			" (expected " + strings.Join(f.Format.Extensions(), " or ") + ").")
	}
	return checkContent(f.Format, f.File)
}

func checkContent(format Format, file *File) error {
	rc, err := file.Open()
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "Could not read "+file.Name+".", err)
	}
	defer rc.Close()

	switch format {
	case FormatCSV:
		r := csv.NewReader(io.LimitReader(rc, sniffLimit))
		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			return invalid("The selected file is empty.")
		}
		if err != nil || len(header) == 0 {
			return apperr.Wrap(apperr.KindValidation, "The selected file is not valid CSV.", err)
		}
	case FormatSpreadsheet:
		if !strings.HasSuffix(strings.ToLower(file.Name), ".xlsx") {
			// Legacy .xls is passed through for the server to read.
			return nil
		}
		wb, err := excelize.OpenReader(rc)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "The selected file is not a readable spreadsheet.", err)
		}
		defer wb.Close()
		if len(wb.GetSheetList()) == 0 {
			return invalid("The selected spreadsheet has no sheets.")
		}
	case FormatJSON:
		b, err := io.ReadAll(rc)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "Could not read "+file.Name+".", err)
		}
		if len(bytes.TrimSpace(b)) == 0 {
			return invalid("The selected file is empty.")
		}
		if !gjson.ValidBytes(b) {
			return invalid("Invalid JSON format. Please check your input.")
		}
	}
	return nil
}
