package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/phasma/pkg/browser"
	"github.com/entrhq/phasma/pkg/config"
)

type pdfCmd struct {
	gs        *globalState
	format    string
	landscape bool
	margin    string
	viewport  string
	wait      int
}

func (c *pdfCmd) run(cmd *cobra.Command, args []string) error {
	url, output := args[0], args[1]

	// Unset flags fall back to the persisted browser defaults.
	if section := config.GetBrowser(); section != nil {
		if !cmd.Flags().Changed("format") {
			c.format = section.PDFFormat()
		}
		if !cmd.Flags().Changed("margin") {
			c.margin = section.PDFMargin()
		}
	}

	b, page, err := c.gs.launchPage(c.gs.ctx, c.viewport)
	if err != nil {
		return err
	}
	defer b.Close()

	if _, err := page.Goto(c.gs.ctx, url); err != nil {
		return err
	}
	if c.wait > 0 {
		if err := page.WaitForTimeout(c.gs.ctx, time.Duration(c.wait)*time.Millisecond); err != nil {
			return err
		}
	}

	_, err = page.PDF(c.gs.ctx, output, browser.PDFOptions{
		Format:    c.format,
		Landscape: c.landscape,
		Margin:    c.margin,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.gs.stdout, "PDF saved to %s\n", output)
	return nil
}

func getCmdPDF(gs *globalState) *cobra.Command {
	pdfCmd := &pdfCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "pdf <url> <output>",
		Short: "Render a page to a paginated PDF",
		Args:  cobra.ExactArgs(2),
		RunE:  pdfCmd.run,
	}

	cmd.Flags().StringVar(&pdfCmd.format, "format", "A4", "paper format (A3, A4, A5, Letter, Legal, Tabloid)")
	cmd.Flags().BoolVar(&pdfCmd.landscape, "landscape", false, "use landscape orientation")
	cmd.Flags().StringVar(&pdfCmd.margin, "margin", "1cm", "page margin, e.g. 1cm or 0.5in")
	cmd.Flags().StringVar(&pdfCmd.viewport, "viewport", defaultViewportSpec, "viewport size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&pdfCmd.wait, "wait", 100, "extra settle time after load, in milliseconds")
	return cmd
}
