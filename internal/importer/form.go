// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is the kind of data being imported.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
	FormatJSON        Format = "json"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, true
	case "spreadsheet", "excel", "xlsx", "xls":
		return FormatSpreadsheet, true
	case "json":
		return FormatJSON, true
	}
	return "", false
}

// Extensions lists the file extensions accepted for f.
func (f Format) Extensions() []string {
	switch f {
	case FormatCSV:
		return []string{".csv"}
	case FormatSpreadsheet:
		return []string{".xls", ".xlsx"}
	case FormatJSON:
		return []string{".json"}
	}
	return nil
}

func (f Format) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// JSONSource selects where JSON input comes from.
type JSONSource string

const (
	JSONPaste JSONSource = "paste"
	JSONFile  JSONSource = "file"
)

// File is a selected input file.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// LocalFile selects a file on disk.
func LocalFile(path string) *File {
	return &File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Form is the user's pending import.
type Form struct {
	Table      string
	Format     Format
	JSONSource JSONSource
	File       *File
	JSONText   string
}

// usesFile reports whether the form's payload is the selected file.
func (f Form) usesFile() bool {
	return f.Format != FormatJSON || f.JSONSource == JSONFile
}
