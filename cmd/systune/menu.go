package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/systune/cmd/systune/tui"
	"github.com/jamesainslie/systune/pkg/systune/backup"
	"github.com/jamesainslie/systune/pkg/systune/config"
	"github.com/jamesainslie/systune/pkg/systune/deps"
	"github.com/jamesainslie/systune/pkg/systune/hostinfo"
	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/tuning"
)

// actionName maps menu actions to tuning operation names.
var actionName = map[tui.Action]string{
	tui.ActionCPU:     "cpu",
	tui.ActionMemory:  "memory",
	tui.ActionDisk:    "disk",
	tui.ActionNetwork: "network",
	tui.ActionKernel:  "kernel",
}

// runMenu drives the interactive menu: show it, run the selected action,
// show it again, until the operator exits. Fatal tuning errors terminate the
// process; anything else is logged and the menu returns.
func runMenu(cmd *cobra.Command, args []string) error {
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

	host, err := hostinfo.Detect()
	if err != nil {
		logging.Get("main").Warn("host detection incomplete", "error", err)
	}

	ctx := cmd.Context()
	ops := tuning.NewOperations(tuning.Options{Config: cfg})
	logger := logging.Get("main")

	for {
		choice, err := tui.Run(host)
		if err != nil {
			return err
		}

		switch choice {
		case tui.ActionNone:
			continue

		case tui.ActionExit:
			logger.Info("exiting")
			return nil

		case tui.ActionSuper:
			// Confirmation already happened in the menu.
			results, err := tuning.RunAll(ctx, ops)
			recordRun(cfg, host, results, err)
			if err != nil {
				if handleTuningError(err) {
					return err
				}
			}

		case tui.ActionBackup:
			runMenuBackup(cfg)

		case tui.ActionRestore:
			runMenuRestore(cfg)

		case tui.ActionDeps:
			mgr, err := deps.Detect()
			if err != nil {
				printError("%v", err)
				return err
			}
			if err := mgr.EnsureAll(ctx, config.DefaultPackages); err != nil {
				// Dependency install failure fails the whole run.
				return err
			}

		default:
			op, err := tuning.Find(ops, actionName[choice])
			if err != nil {
				return err
			}
			res, err := tuning.RunOne(ctx, op)
			recordRun(cfg, host, []tuning.Result{res}, err)
			if err != nil {
				if handleTuningError(err) {
					return err
				}
			}
		}
	}
}

// handleTuningError reports whether the error must terminate the process.
// Fatal errors (mount table invalid after edit) exit immediately with a
// non-zero status; other failures leave the menu running.
func handleTuningError(err error) bool {
	if tuning.IsFatal(err) {
		printError("%v", err)
		_ = logging.Close()
		os.Exit(1)
	}
	printError("%v", err)
	return false
}

// runMenuBackup creates a snapshot from the menu.
func runMenuBackup(cfg *config.Config) {
	mgr := backup.NewManager(cfg.BackupDir, cfg.ManagedFiles())
	snap, err := mgr.Create()
	if err != nil {
		printError("backup failed: %v", err)
		return
	}
	printInfo("Backup created: %s (%d files)", snap.Dir, len(snap.Files))
}

// runMenuRestore restores the most recent snapshot from the menu.
func runMenuRestore(cfg *config.Config) {
	mgr := backup.NewManager(cfg.BackupDir, cfg.ManagedFiles())
	snap, err := mgr.Latest()
	if err != nil {
		if errors.Is(err, backup.ErrNoSnapshot) {
			printError("no backup to restore; create one first")
			return
		}
		printError("restore failed: %v", err)
		return
	}
	if err := mgr.Restore(snap); err != nil {
		printError("restore failed: %v", err)
		return
	}
	printInfo("Restored snapshot %s", snap.Dir)
}
