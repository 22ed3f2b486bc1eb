package tuning

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamesainslie/systune/pkg/systune/execx"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// CPUOperation pins the CPU frequency scaling governor and reports NUMA
// topology. Both utilities are optional: a missing cpupower or numactl
// downgrades the operation instead of failing it.
type CPUOperation struct {
	governor  string
	run       execx.Runner
	available func(string) bool
}

// NewCPUOperation builds the CPU operation from the wired options.
func NewCPUOperation(opts Options) *CPUOperation {
	return &CPUOperation{
		governor:  opts.Config.Targets.Governor,
		run:       opts.Run,
		available: opts.Available,
	}
}

// Name implements Operation.
func (o *CPUOperation) Name() string { return "cpu" }

// Title implements Operation.
func (o *CPUOperation) Title() string { return "CPU governor" }

// Run implements Operation.
func (o *CPUOperation) Run(ctx context.Context) (Result, error) {
	logger := logging.Get("tuning")
	res := Result{Name: o.Name()}

	if !o.available("cpupower") {
		logger.Warn("cpupower not found, skipping governor change")
		res.Degraded = true
	} else {
		current := o.currentGovernor(ctx)
		if current == o.governor {
			logger.Info("governor already set, skipping", "governor", current)
			res.Skipped++
		} else {
			if _, err := o.run(ctx, "cpupower", "frequency-set", "-g", o.governor); err != nil {
				return res, fmt.Errorf("setting governor: %w", err)
			}
			logger.Info("governor set", "from", current, "to", o.governor)
			res.Changed++
		}
	}

	if !o.available("numactl") {
		logger.Warn("numactl not found, skipping NUMA topology report")
		res.Degraded = true
		return res, nil
	}

	topology, err := o.run(ctx, "numactl", "--hardware")
	if err != nil {
		logger.Warn("failed to query NUMA topology", "error", err)
		res.Degraded = true
		return res, nil
	}
	logger.Info("NUMA topology", "hardware", topology)

	return res, nil
}

// currentGovernor reads the active governor, or "" when unreadable.
func (o *CPUOperation) currentGovernor(ctx context.Context) string {
	out, err := o.run(ctx, "cpupower", "frequency-info", "-p")
	if err != nil {
		return ""
	}
	// cpupower frequency-info -p prints the policy as its last line:
	//   analyzing CPU 0:
	//     800000 4200000 powersave
	fields := lastFields(out)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// lastFields returns the whitespace-split fields of the last non-empty line.
func lastFields(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if fields := strings.Fields(lines[i]); len(fields) > 0 {
			return fields
		}
	}
	return nil
}
