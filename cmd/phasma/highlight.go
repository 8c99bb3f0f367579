package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
)

// writeMarkup prints HTML to w, syntax-highlighted when w is an
// interactive terminal and color has not been disabled.
func writeMarkup(w io.Writer, markup string, noColor bool) error {
	if !noColor && isTerminal(w) {
		if err := quick.Highlight(w, markup, "html", "terminal256", "monokai"); err == nil {
			_, err = fmt.Fprintln(w)
			return err
		}
	}
	_, err := fmt.Fprintln(w, markup)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
