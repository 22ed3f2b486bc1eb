package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/systune/pkg/systune/config"
	"github.com/jamesainslie/systune/pkg/systune/history"
	"github.com/jamesainslie/systune/pkg/systune/hostinfo"
	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/tuning"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past tuning runs",
	Long: `View the recorded history of tuning runs: when systune ran, which
operations it applied, and how many settings each one changed.`,
	RunE: runHistory,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries past the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// recordRun persists one run to the history store. Recording failures are
// logged, never surfaced: history is an audit trail, not a dependency of the
// tuning itself.
func recordRun(cfg *config.Config, host hostinfo.Info, results []tuning.Result, runErr error) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.New(cfg.History.Path)
	if err != nil {
		logging.Get("main").Warn("history disabled", "error", err)
		return
	}

	records := make([]history.OpRecord, 0, len(results))
	for _, res := range results {
		records = append(records, history.OpRecord{
			Name:     res.Name,
			Changed:  res.Changed,
			Skipped:  res.Skipped,
			Degraded: res.Degraded,
		})
	}
	if runErr != nil {
		records = append(records, history.OpRecord{Name: "run", Error: runErr.Error()})
	}

	if _, err := store.Record(host.KernelRelease, records); err != nil {
		logging.Get("main").Warn("failed to record run history", "error", err)
	}
}

// runHistory lists recent tuning runs.
func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.New(cfg.History.Path)
	if err != nil {
		return err
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No tuning runs recorded yet.")
		printInfo("Run 'systune apply all' or use the interactive menu.")
		return nil
	}

	for _, entry := range entries {
		var ops []string
		for _, op := range entry.Operations {
			if op.Error != "" {
				ops = append(ops, fmt.Sprintf("%s(failed)", op.Name))
				continue
			}
			ops = append(ops, fmt.Sprintf("%s(%d changed)", op.Name, op.Changed))
		}
		printInfo("%s  %s  %s",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.ID[:8],
			strings.Join(ops, ", "))
	}
	return nil
}

// runHistoryClean removes entries past the retention period.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.New(cfg.History.Path)
	if err != nil {
		return err
	}

	removed, err := store.Clean(cfg.History.RetentionDays)
	if err != nil {
		return err
	}
	printInfo("Removed %d history entries older than %d days", removed, cfg.History.RetentionDays)
	return nil
}
