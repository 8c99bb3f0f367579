package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type screenshotCmd struct {
	gs       *globalState
	viewport string
	wait     int
}

func (c *screenshotCmd) run(cmd *cobra.Command, args []string) error {
	url, output := args[0], args[1]

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

	if _, err := page.Screenshot(c.gs.ctx, output); err != nil {
		return err
	}
	fmt.Fprintf(c.gs.stdout, "Screenshot saved to %s\n", output)
	return nil
}

func getCmdScreenshot(gs *globalState) *cobra.Command {
	screenshotCmd := &screenshotCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "screenshot <url> <output>",
		Short: "Capture a rendered page as a PNG",
		Args:  cobra.ExactArgs(2),
		RunE:  screenshotCmd.run,
	}

	cmd.Flags().StringVar(&screenshotCmd.viewport, "viewport", defaultViewportSpec, "viewport size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&screenshotCmd.wait, "wait", 100, "extra settle time after load, in milliseconds")
	return cmd
}
