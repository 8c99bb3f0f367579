package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/phasma/pkg/config"
	"github.com/entrhq/phasma/pkg/engine"
)

// configuredBinPath returns the binary path persisted in the config
// store, if any.
func configuredBinPath() string {
	if section := config.GetDriver(); section != nil {
		return section.BinPath()
	}
	return ""
}

func getCmdDriverPath(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved engine binary path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := engine.Locate(configuredBinPath())
			if err != nil {
				return err
			}
			fmt.Fprintln(gs.stdout, bin)
			return nil
		},
	}
}

func getCmdDriverVersion(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := engine.Locate(configuredBinPath())
			if err != nil {
				return err
			}
			version, err := engine.Version(gs.ctx, bin)
			if err != nil {
				return err
			}
			fmt.Fprintf(gs.stdout, "PhantomJS %s (%s)\n", version, bin)
			return nil
		},
	}
}

type driverInstallCmd struct {
	gs      *globalState
	force   bool
	os      string
	arch    string
	version string
}

func (c *driverInstallCmd) run(cmd *cobra.Command, args []string) error {
	bin, err := engine.Install(c.gs.ctx, engine.InstallOptions{
		Version: c.version,
		OS:      c.os,
		Arch:    c.arch,
		Force:   c.force,
		Logger:  c.gs.logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.gs.stdout, "Engine installed at %s\n", bin)
	return nil
}

func getCmdDriverInstall(gs *globalState) *cobra.Command {
	installCmd := &driverInstallCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and install the engine binary",
		Args:  cobra.NoArgs,
		RunE:  installCmd.run,
	}

	cmd.Flags().BoolVar(&installCmd.force, "force", false, "reinstall over an existing installation")
	cmd.Flags().StringVar(&installCmd.os, "os", "", "target OS (linux, darwin, windows; default: current)")
	cmd.Flags().StringVar(&installCmd.arch, "arch", "", "target architecture (amd64, 386; default: current)")
	cmd.Flags().StringVar(&installCmd.version, "version", "", "engine version (default: pinned release)")
	return cmd
}

func getCmdDriver(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driver",
		Short: "Manage the PhantomJS engine binary",
	}

	cmd.AddCommand(
		getCmdDriverPath(gs),
		getCmdDriverVersion(gs),
		getCmdDriverInstall(gs),
	)
	return cmd
}
