package tuning

import (
	"context"
	"strconv"

	"github.com/jamesainslie/systune/pkg/systune/sysctl"
)

// KernelOperation raises the system-wide file descriptor limit.
type KernelOperation struct {
	params []Parameter
	sc     *sysctl.Client
}

// NewKernelOperation builds the kernel limits operation from the wired
// options.
func NewKernelOperation(opts Options) *KernelOperation {
	return &KernelOperation{
		params: []Parameter{
			{Key: "fs.file-max", Target: strconv.Itoa(opts.Config.Targets.FileMax)},
		},
		sc: opts.Sysctl,
	}
}

// Name implements Operation.
func (o *KernelOperation) Name() string { return "kernel" }

// Title implements Operation.
func (o *KernelOperation) Title() string { return "Kernel limits (file-max)" }

// Run implements Operation.
func (o *KernelOperation) Run(ctx context.Context) (Result, error) {
	res := Result{Name: o.Name()}

	changed, skipped, err := ensureParams(ctx, o.sc, o.params)
	res.Changed, res.Skipped = changed, skipped
	return res, err
}
