package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/phasma/pkg/driver"
)

type execjsCmd struct {
	gs      *globalState
	timeout time.Duration
}

func (c *execjsCmd) run(cmd *cobra.Command, args []string) error {
	script, err := c.readScript(args[0])
	if err != nil {
		return err
	}

	opts, err := c.gs.driverOptions()
	if err != nil {
		return err
	}

	out, err := driver.New(opts).ExecScript(c.gs.ctx, script, c.timeout)
	if err != nil {
		var genErr *driver.GenerationError
		if errors.As(err, &genErr) && genErr.Stderr != "" {
			fmt.Fprintln(c.gs.stderr, genErr.Stderr)
		}
		return err
	}

	_, err = c.gs.stdout.Write(out)
	return err
}

// readScript resolves the script argument: "-" reads stdin, an existing
// file is read from disk, anything else is inline JavaScript.
func (c *execjsCmd) readScript(arg string) (string, error) {
	if arg == "-" {
		raw, err := io.ReadAll(c.gs.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read script from stdin: %w", err)
		}
		return string(raw), nil
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		raw, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("failed to read script %s: %w", arg, err)
		}
		return string(raw), nil
	}
	return arg, nil
}

func getCmdExecJS(gs *globalState) *cobra.Command {
	execjsCmd := &execjsCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "execjs <script|file|->",
		Short: "Run JavaScript in a one-shot engine process",
		Long:  "Run JavaScript in a one-shot engine process and print its output.\nPass a script file, inline code, or - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  execjsCmd.run,
	}

	cmd.Flags().DurationVar(&execjsCmd.timeout, "timeout", 60*time.Second, "execution timeout")
	return cmd
}
