package tuning

import (
	"context"
	"strconv"

	"github.com/jamesainslie/systune/pkg/systune/logging"
	"github.com/jamesainslie/systune/pkg/systune/sysctl"
)

// MemoryOperation tunes swappiness and hugepages through the declarative
// parameter table.
type MemoryOperation struct {
	params []Parameter
	sc     *sysctl.Client
}

// NewMemoryOperation builds the memory operation from the wired options.
func NewMemoryOperation(opts Options) *MemoryOperation {
	targets := opts.Config.Targets
	return &MemoryOperation{
		params: []Parameter{
			{Key: "vm.swappiness", Target: strconv.Itoa(targets.Swappiness)},
			{Key: "vm.nr_hugepages", Target: strconv.Itoa(targets.HugePages)},
		},
		sc: opts.Sysctl,
	}
}

// Name implements Operation.
func (o *MemoryOperation) Name() string { return "memory" }

// Title implements Operation.
func (o *MemoryOperation) Title() string { return "Memory (swappiness, hugepages)" }

// Run implements Operation.
func (o *MemoryOperation) Run(ctx context.Context) (Result, error) {
	res := Result{Name: o.Name()}

	changed, skipped, err := ensureParams(ctx, o.sc, o.params)
	res.Changed, res.Skipped = changed, skipped
	if err != nil {
		return res, err
	}

	// The kernel allocates hugepages best effort; on a fragmented host the
	// achieved count can be lower than requested. Report it but do not fail.
	if achieved, err := o.sc.ReadValue("vm.nr_hugepages"); err == nil {
		logging.Get("tuning").Info("hugepages allocated", "count", achieved)
	}

	return res, nil
}
