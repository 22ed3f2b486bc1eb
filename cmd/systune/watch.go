package main

import (
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the managed configuration files for drift",
	Long: `Watch the boot-loader config, mount table, and sysctl conf for changes
made outside systune and log a warning for each. Blocks until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch blocks, reporting drift on the managed files until SIGINT/SIGTERM.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	w, err := watcher.New(cfg.ManagedFiles())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printInfo("Watching managed files for drift (ctrl+c to stop)...")
	w.Run(ctx, func(path string, op fsnotify.Op) {
		printInfo("changed: %s (%s)", path, op)
	})
	return nil
}
