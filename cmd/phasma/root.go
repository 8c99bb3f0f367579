package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/phasma/pkg/browser"
	"github.com/entrhq/phasma/pkg/config"
	"github.com/entrhq/phasma/pkg/driver"
	"github.com/entrhq/phasma/pkg/engine"
	"github.com/entrhq/phasma/pkg/logging"
)

// globalState carries everything the subcommands share: streams, the
// interrupt context, persistent flags and the session logger.
type globalState struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *logging.Logger

	configPath string
	noColor    bool
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:    ctx,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.Nop(),
	}
}

func newRootCmd(gs *globalState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "phasma",
		Short:         "Headless browser automation on a persistent PhantomJS engine",
		Long:          "Phasma renders JavaScript-driven pages, captures screenshots and generates PDFs\nthrough a persistent PhantomJS session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logger, err := logging.NewLogger("cli"); err == nil {
				gs.logger = logger
			}
			return config.Initialize(gs.configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&gs.configPath, "config", "",
		"config file path (default ~/.phasma/config.json)")
	rootCmd.PersistentFlags().BoolVar(&gs.noColor, "no-color", false,
		"disable syntax highlighting of terminal output")

	rootCmd.AddCommand(
		getCmdRender(gs),
		getCmdScreenshot(gs),
		getCmdPDF(gs),
		getCmdExecJS(gs),
		getCmdDriver(gs),
	)
	return rootCmd
}

// driverOptions assembles engine driver options from the config store,
// resolves the binary on disk and attaches the session logger.
func (gs *globalState) driverOptions() (driver.Options, error) {
	opts := driver.DefaultOptions()
	if section := config.GetDriver(); section != nil {
		opts = section.Options()
	}

	envOpts, err := driver.OptionsFromEnv()
	if err != nil {
		return opts, fmt.Errorf("invalid PHASMA_* environment: %w", err)
	}
	if envOpts.BinPath != "" {
		opts.BinPath = envOpts.BinPath
	}

	bin, err := engine.Locate(opts.BinPath)
	if err != nil {
		return opts, err
	}
	opts.BinPath = bin
	opts.Logger = gs.logger
	return opts, nil
}

// launchPage starts a browser session sized to the given viewport and
// returns its page. The caller closes the browser.
func (gs *globalState) launchPage(ctx context.Context, viewport string) (*browser.Browser, *browser.Page, error) {
	opts, err := gs.driverOptions()
	if err != nil {
		return nil, nil, err
	}

	width, height, err := parseViewport(viewport)
	if err != nil {
		return nil, nil, err
	}
	opts.ViewportWidth = width
	opts.ViewportHeight = height

	var allowedHosts []string
	if section := config.GetBrowser(); section != nil {
		allowedHosts = section.AllowedHosts()
	}

	b, err := browser.Launch(ctx, browser.LaunchOptions{
		Driver:       opts,
		AllowedHosts: allowedHosts,
	})
	if err != nil {
		return nil, nil, err
	}

	page := b.NewPage()
	page.SetViewportSize(width, height)
	return b, page, nil
}

// parseViewport parses a WIDTHxHEIGHT specification like "1024x768".
func parseViewport(spec string) (width, height int, err error) {
	parts := strings.SplitN(spec, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid viewport %q: expected WIDTHxHEIGHT", spec)
	}
	width, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err == nil {
		height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	if err != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid viewport %q: expected positive WIDTHxHEIGHT", spec)
	}
	return width, height, nil
}

// defaultViewportSpec is the flag default shared by the page commands.
var defaultViewportSpec = fmt.Sprintf("%dx%d", driver.DefaultViewportWidth, driver.DefaultViewportHeight)
