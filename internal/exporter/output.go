// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/pterm/pterm"
)

// TerminalViewer prints documents to a terminal, highlighted when Color is set.
type TerminalViewer struct {
	Out   io.Writer
	Color bool
	// Style is a chroma style name; empty means "monokai".
	Style string
}

// View writes a header line and the document.
func (v TerminalViewer) View(title string, doc []byte) error {
	out := v.Out
	if out == nil {
		out = os.Stdout
	}
	if v.Color {
		if _, err := fmt.Fprintln(out, pterm.Bold.Sprint(title)); err != nil {
			return err
		}
		style := v.Style
		if style == "" {
			style = "monokai"
		}
		if err := quick.Highlight(out, string(doc), "json", "terminal256", style); err != nil {
			return err
		}
	} else if _, err := out.Write(doc); err != nil {
		return err
	}
	if len(doc) > 0 && doc[len(doc)-1] != '\n' {
		_, err := fmt.Fprintln(out)
		return err
	}
	return nil
}

// FileSaver writes downloads into Dir. Files appear atomically: the body is
// written to a temp file which is then renamed over the target.
type FileSaver struct {
	Dir string
}

// Save writes r to Dir/name.
func (s FileSaver) Save(name string, r io.Reader) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	target := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}
