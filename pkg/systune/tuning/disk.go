package tuning

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jamesainslie/systune/pkg/systune/execx"
	"github.com/jamesainslie/systune/pkg/systune/fstab"
	"github.com/jamesainslie/systune/pkg/systune/hostinfo"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// DiskOperation raises the primary disk's read-ahead and adds mount options
// to the root filesystem's mount table record. The mount table is verified
// before and after the edit; a post-edit verification failure restores the
// pre-edit content and is fatal for the whole process, so the host is never
// left with a broken table.
type DiskOperation struct {
	fstabPath        string
	rootMount        string
	mountOptions     []string
	readAheadSectors int
	run              execx.Runner
}

// NewDiskOperation builds the disk I/O operation from the wired options.
func NewDiskOperation(opts Options) *DiskOperation {
	return &DiskOperation{
		fstabPath:        opts.Config.Files.Fstab,
		rootMount:        "/",
		mountOptions:     opts.Config.Targets.MountOptions,
		readAheadSectors: opts.Config.Targets.ReadAheadSectors,
		run:              opts.Run,
	}
}

// Name implements Operation.
func (o *DiskOperation) Name() string { return "disk" }

// Title implements Operation.
func (o *DiskOperation) Title() string { return "Disk I/O (read-ahead, mount options)" }

// Run implements Operation.
func (o *DiskOperation) Run(ctx context.Context) (Result, error) {
	logger := logging.Get("tuning")
	res := Result{Name: o.Name()}

	if err := o.setReadAhead(ctx, logger, &res); err != nil {
		return res, err
	}

	changed, err := o.addMountOptions(ctx, logger)
	if err != nil {
		return res, err
	}
	if !changed {
		logger.Info("mount options already set, skipping",
			"mountpoint", o.rootMount, "options", strings.Join(o.mountOptions, ","))
		res.Skipped++
		return res, nil
	}
	res.Changed++

	// Remount the edited filesystem so the new options take effect now
	// rather than on the next boot.
	if _, err := o.run(ctx, "mount", "-o", "remount", o.rootMount); err != nil {
		logger.Warn("remount failed, options apply on next boot", "error", err)
	}

	return res, nil
}

// setReadAhead raises the read-ahead of the disk backing the root
// filesystem. Failures here are advisory: a host without blockdev or with an
// unresolvable root device still gets the mount option edit.
func (o *DiskOperation) setReadAhead(ctx context.Context, logger *logging.Logger, res *Result) error {
	disk, err := hostinfo.PrimaryDisk(ctx, o.run)
	if err != nil {
		logger.Warn("cannot resolve primary disk, skipping read-ahead", "error", err)
		res.Degraded = true
		return nil
	}

	target := strconv.Itoa(o.readAheadSectors)
	current, err := o.run(ctx, "blockdev", "--getra", disk)
	if err == nil && current == target {
		logger.Info("read-ahead already set, skipping", "disk", disk, "sectors", target)
		res.Skipped++
		return nil
	}

	if _, err := o.run(ctx, "blockdev", "--setra", target, disk); err != nil {
		logger.Warn("failed to set read-ahead", "disk", disk, "error", err)
		res.Degraded = true
		return nil
	}

	logger.Info("read-ahead set", "disk", disk, "sectors", target)
	res.Changed++
	return nil
}

// addMountOptions verifies the mount table, rewrites the root record's
// options, and verifies again. It reports whether the table changed.
func (o *DiskOperation) addMountOptions(ctx context.Context, logger *logging.Logger) (bool, error) {
	if err := fstab.Verify(ctx, o.run, o.fstabPath); err != nil {
		return false, &FatalError{Err: fmt.Errorf("mount table invalid before edit: %w", err)}
	}

	// Keep the pre-edit content in memory so a bad edit can be rolled back.
	original, err := os.ReadFile(o.fstabPath)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", o.fstabPath, err)
	}

	table, err := fstab.Parse(o.fstabPath)
	if err != nil {
		return false, err
	}

	changed, err := table.AddOptions(o.rootMount, o.mountOptions...)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := table.WriteFile(o.fstabPath); err != nil {
		return false, err
	}

	if err := fstab.Verify(ctx, o.run, o.fstabPath); err != nil {
		if restoreErr := os.WriteFile(o.fstabPath, original, 0o644); restoreErr != nil {
			logger.Error("failed to restore mount table", "error", restoreErr)
		} else {
			logger.Error("mount table edit failed verification, original restored")
		}
		return false, &FatalError{Err: err}
	}

	logger.Info("mount options added",
		"mountpoint", o.rootMount, "options", strings.Join(o.mountOptions, ","))
	return true, nil
}
