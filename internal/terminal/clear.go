// Package terminal erases output the pager has already printed, so each page
// redraws in place.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Width returns the terminal width of f, or 80 when it is not a terminal.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// Lines counts the rows text occupies at the given width, including wrapped
// lines. ANSI color codes are not counted towards line length.
func Lines(text string, width int) int {
	if width <= 0 {
		width = 80
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return 0
	}
	n := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(pterm.RemoveColorFromString(line))
		rows := (w + width - 1) / width
		if rows < 1 {
			rows = 1
		}
		n += rows
	}
	return n
}

// ClearLines moves the cursor up n rows, erasing each one. The cursor ends at
// the start of the topmost erased row.
func ClearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\x1b[1A\r\x1b[2K")
	}
}
