// Package execx wraps external command invocation for systune. All host
// mutations flow through a single Runner type so operations can be exercised
// in tests without touching the host.
package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout is the maximum time to wait for any external command.
const DefaultTimeout = 30 * time.Second

// Runner executes an external command and returns its combined output.
// Implementations must honor context cancellation.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// Run executes a command with DefaultTimeout applied on top of the caller's
// context. The combined stdout/stderr is returned with surrounding
// whitespace trimmed; on a non-zero exit the output is folded into the error.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text != "" {
			return text, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, text)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return text, nil
}

// Available reports whether a utility is present on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
