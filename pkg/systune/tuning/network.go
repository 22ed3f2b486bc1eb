package tuning

import (
	"context"
	"strconv"

	"github.com/jamesainslie/systune/pkg/systune/sysctl"
)

// NetworkOperation raises the listen backlog and enables TIME_WAIT socket
// reuse, then reloads the sysctl configuration so the whole file is applied
// consistently.
type NetworkOperation struct {
	params []Parameter
	sc     *sysctl.Client
}

// NewNetworkOperation builds the network operation from the wired options.
func NewNetworkOperation(opts Options) *NetworkOperation {
	return &NetworkOperation{
		params: []Parameter{
			{Key: "net.core.somaxconn", Target: strconv.Itoa(opts.Config.Targets.Somaxconn)},
			{Key: "net.ipv4.tcp_tw_reuse", Target: "1"},
		},
		sc: opts.Sysctl,
	}
}

// Name implements Operation.
func (o *NetworkOperation) Name() string { return "network" }

// Title implements Operation.
func (o *NetworkOperation) Title() string { return "Network (somaxconn, tw_reuse)" }

// Run implements Operation.
func (o *NetworkOperation) Run(ctx context.Context) (Result, error) {
	res := Result{Name: o.Name()}

	changed, skipped, err := ensureParams(ctx, o.sc, o.params)
	res.Changed, res.Skipped = changed, skipped
	if err != nil {
		return res, err
	}

	if changed > 0 {
		if err := o.sc.Reload(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}
