package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/systune/pkg/systune/hostinfo"
	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/tuning"
)

var applyCmd = &cobra.Command{
	Use:   "apply {cpu|memory|disk|network|kernel|all}",
	Short: "Apply tuning operations non-interactively",
	Long: `Apply one optimization category, or all five in their fixed order
(CPU, memory, disk I/O, network, kernel limits).

Each operation is idempotent: settings already at their target value are
skipped, and re-running leaves the configuration files unchanged.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"cpu", "memory", "disk", "network", "kernel", "all"},
	RunE:      runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

// runApply applies the named operation (or all of them) and records the run.
func runApply(cmd *cobra.Command, args []string) error {
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

	if args[0] == "all" {
		results, err := tuning.RunAll(ctx, ops)
		recordRun(cfg, host, results, err)
		return err
	}

	op, err := tuning.Find(ops, args[0])
	if err != nil {
		return err
	}
	res, err := tuning.RunOne(ctx, op)
	recordRun(cfg, host, []tuning.Result{res}, err)
	return err
}
