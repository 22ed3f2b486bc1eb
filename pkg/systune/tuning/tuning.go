// Package tuning implements the host optimization operations: CPU governor,
// memory, disk I/O, network, and kernel limits. Every sysctl-backed setting
// is a row in a declarative parameter table driven through one idempotent
// apply routine; each operation reads current state, changes only what
// differs from the target, and reports what it did.
package tuning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/systune/pkg/systune/config"
	"github.com/jamesainslie/systune/pkg/systune/execx"
	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/sysctl"
)

// Parameter is one tunable kernel parameter with its target value.
type Parameter struct {
	// Key is the dotted sysctl key, e.g. "vm.swappiness".
	Key string

	// Target is the desired value.
	Target string
}

// Result summarizes one operation run.
type Result struct {
	// Name is the operation's short name (cpu, memory, disk, network, kernel).
	Name string

	// Changed counts settings that were actually written.
	Changed int

	// Skipped counts settings already at their target.
	Skipped int

	// Degraded is set when an optional utility was missing and the
	// operation ran in reduced form.
	Degraded bool
}

// Operation is one tuning category.
type Operation interface {
	// Name returns the short name used in menus, summaries, and history.
	Name() string

	// Title returns the human-readable description.
	Title() string

	// Run applies the operation. It is idempotent: re-running against an
	// already-tuned host performs no writes.
	Run(ctx context.Context) (Result, error)
}

// FatalError marks an error that must terminate the whole process with a
// non-zero status, such as a mount table that fails verification after an
// edit. Non-fatal operation errors are logged and the menu continues.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// ensureParams drives the parameter table through the idempotent apply
// routine, counting what changed and what was already set.
func ensureParams(ctx context.Context, sc *sysctl.Client, params []Parameter) (changed, skipped int, err error) {
	for _, p := range params {
		didChange, err := sc.Ensure(ctx, p.Key, p.Target)
		if err != nil {
			return changed, skipped, fmt.Errorf("ensuring %s: %w", p.Key, err)
		}
		if didChange {
			changed++
		} else {
			skipped++
		}
	}
	return changed, skipped, nil
}

// Options wires the collaborators the operations need. Zero-value fields are
// filled with host defaults.
type Options struct {
	// Config supplies file paths and target values.
	Config *config.Config

	// Sysctl reads and writes kernel parameters. Defaults to a client for
	// the host's /proc/sys and the configured sysctl conf file.
	Sysctl *sysctl.Client

	// Run executes external commands. Defaults to execx.Run.
	Run execx.Runner

	// Available reports whether a utility is on PATH. Defaults to
	// execx.Available.
	Available func(string) bool
}

// fill applies defaults for unset fields.
func (o Options) fill() Options {
	if o.Sysctl == nil {
		o.Sysctl = sysctl.NewClient(o.Config.Files.Sysctl)
	}
	if o.Run == nil {
		o.Run = execx.Run
	}
	if o.Available == nil {
		o.Available = execx.Available
	}
	return o
}

// NewOperations builds the five tuning operations in their fixed execution
// order: CPU, memory, disk I/O, network, kernel limits.
func NewOperations(opts Options) []Operation {
	opts = opts.fill()
	return []Operation{
		NewCPUOperation(opts),
		NewMemoryOperation(opts),
		NewDiskOperation(opts),
		NewNetworkOperation(opts),
		NewKernelOperation(opts),
	}
}

// Find returns the operation with the given short name.
func Find(ops []Operation, name string) (Operation, error) {
	for _, op := range ops {
		if op.Name() == name {
			return op, nil
		}
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}

// RunAll executes the operations sequentially in their fixed order, emitting
// one summary line per completed operation. A fatal error stops the
// sequence; any other error is returned after the summary for completed
// operations has been written.
func RunAll(ctx context.Context, ops []Operation) ([]Result, error) {
	logger := logging.Get("tuning")

	var results []Result
	for _, op := range ops {
		logger.Info("running optimization", "operation", op.Name())
		res, err := op.Run(ctx)
		if err != nil {
			logger.Error("optimization failed", "operation", op.Name(), "error", err)
			return results, err
		}
		results = append(results, res)
		logging.Summary(op.Title(), summarize(res))
	}
	return results, nil
}

// RunOne executes a single operation and emits its summary line.
func RunOne(ctx context.Context, op Operation) (Result, error) {
	logger := logging.Get("tuning")

	logger.Info("running optimization", "operation", op.Name())
	res, err := op.Run(ctx)
	if err != nil {
		logger.Error("optimization failed", "operation", op.Name(), "error", err)
		return res, err
	}
	logging.Summary(op.Title(), summarize(res))
	return res, nil
}

// summarize renders a one-line outcome for the summary log.
func summarize(res Result) string {
	msg := fmt.Sprintf("%d changed, %d already optimal", res.Changed, res.Skipped)
	if res.Degraded {
		msg += " (degraded: optional utility missing)"
	}
	return msg
}
