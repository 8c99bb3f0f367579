package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type renderCmd struct {
	gs       *globalState
	output   string
	viewport string
	wait     int
}

func (c *renderCmd) run(cmd *cobra.Command, args []string) error {
	target, cleanup, err := resolveRenderTarget(args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	b, page, err := c.gs.launchPage(c.gs.ctx, c.viewport)
	if err != nil {
		return err
	}
	defer b.Close()

	if _, err := page.Goto(c.gs.ctx, target); err != nil {
		return err
	}
	if c.wait > 0 {
		if err := page.WaitForTimeout(c.gs.ctx, time.Duration(c.wait)*time.Millisecond); err != nil {
			return err
		}
	}

	markup, err := page.Content(c.gs.ctx)
	if err != nil {
		return err
	}

	if c.output == "" {
		return writeMarkup(c.gs.stdout, markup, c.gs.noColor)
	}
	if err := os.WriteFile(c.output, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.output, err)
	}
	fmt.Fprintf(c.gs.stdout, "Rendered content saved to %s\n", c.output)
	return nil
}

// resolveRenderTarget turns the render argument into a navigable URL:
// an existing file becomes a file:// URL, a URL is passed through, and
// anything else is treated as inline markup written to a temp file.
// The returned cleanup removes that temp file.
func resolveRenderTarget(arg string) (string, func(), error) {
	noop := func() {}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return "", noop, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		return "file://" + filepath.ToSlash(abs), noop, nil
	}

	if parsed, err := url.Parse(arg); err == nil {
		switch parsed.Scheme {
		case "http", "https", "file":
			return arg, noop, nil
		}
	}

	if !strings.Contains(arg, "<") {
		return "", noop, fmt.Errorf("%q is neither an existing file, a URL, nor HTML markup", arg)
	}

	tmp, err := os.CreateTemp("", "phasma-render-*.html")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp page: %w", err)
	}
	if _, err := tmp.WriteString(arg); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("failed to write temp page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("failed to write temp page: %w", err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return "file://" + filepath.ToSlash(tmp.Name()), cleanup, nil
}

func getCmdRender(gs *globalState) *cobra.Command {
	renderCmd := &renderCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "render <url|file|html>",
		Short: "Render a page with JavaScript and print the resulting markup",
		Args:  cobra.ExactArgs(1),
		RunE:  renderCmd.run,
	}

	cmd.Flags().StringVarP(&renderCmd.output, "output", "o", "", "write markup to a file instead of stdout")
	cmd.Flags().StringVar(&renderCmd.viewport, "viewport", defaultViewportSpec, "viewport size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&renderCmd.wait, "wait", 100, "extra settle time after load, in milliseconds")
	return cmd
}
