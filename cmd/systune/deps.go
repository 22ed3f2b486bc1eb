package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/systune/pkg/systune/config"
	"github.com/jamesainslie/systune/pkg/systune/deps"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Install the host utilities the tuning operations need",
	Long: `Detect the host's package manager and install the required utility
packages (util-linux, numactl, sysstat). A failed installation aborts with a
non-zero exit status, since the tuning operations cannot run without their
utilities.`,
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

// runDeps ensures all required packages are installed.
func runDeps(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		printError("%v", err)
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	mgr, err := deps.Detect()
	if err != nil {
		return err
	}
	printInfo("Using package manager: %s", mgr.Kind())

	return mgr.EnsureAll(cmd.Context(), config.DefaultPackages)
}
