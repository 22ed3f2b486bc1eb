// Package sysctl reads and writes Linux kernel parameters. Live values are
// read straight from /proc/sys; persistent values go through the sysctl
// configuration file; live application shells out to the sysctl utility.
package sysctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/systune/pkg/systune/execx"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// Client reads and writes kernel parameters.
type Client struct {
	// ProcRoot is the /proc/sys mount point. Overridable for tests.
	ProcRoot string

	// ConfPath is the sysctl configuration file to persist into.
	ConfPath string

	// Run executes external commands. Defaults to execx.Run.
	Run execx.Runner
}

// NewClient returns a Client for the host's /proc/sys and the given
// configuration file.
func NewClient(confPath string) *Client {
	return &Client{
		ProcRoot: "/proc/sys",
		ConfPath: confPath,
		Run:      execx.Run,
	}
}

// keyPath maps a dotted sysctl key (vm.swappiness) to its /proc/sys path.
func (c *Client) keyPath(key string) string {
	return filepath.Join(c.ProcRoot, strings.ReplaceAll(key, ".", "/"))
}

// ReadValue returns the live value of a kernel parameter.
func (c *Client) ReadValue(key string) (string, error) {
	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Ensure makes a kernel parameter equal target, both live and persistently.
// If the live value already matches, nothing is written and Ensure reports
// no change. Otherwise the configuration file is updated to carry exactly
// one assignment for the key and the value is applied live.
func (c *Client) Ensure(ctx context.Context, key, target string) (bool, error) {
	logger := logging.Get("sysctl")

	current, err := c.ReadValue(key)
	if err != nil {
		return false, err
	}
	if current == target {
		logger.Info("parameter already set, skipping", "key", key, "value", target)
		return false, nil
	}

	if err := c.Persist(key, target); err != nil {
		return false, err
	}
	if err := c.Apply(ctx, key, target); err != nil {
		return false, err
	}

	logger.Info("parameter updated", "key", key, "from", current, "to", target)
	return true, nil
}

// Persist writes the assignment into the configuration file.
func (c *Client) Persist(key, target string) error {
	conf, err := ParseConf(c.ConfPath)
	if err != nil {
		return err
	}
	if conf.Set(key, target) {
		if err := conf.WriteFile(c.ConfPath); err != nil {
			return err
		}
	}
	return nil
}

// Apply sets the parameter live via sysctl -w.
func (c *Client) Apply(ctx context.Context, key, target string) error {
	if _, err := c.Run(ctx, "sysctl", "-w", fmt.Sprintf("%s=%s", key, target)); err != nil {
		return fmt.Errorf("applying %s: %w", key, err)
	}
	return nil
}

// Reload re-applies the configuration file via sysctl -p.
func (c *Client) Reload(ctx context.Context) error {
	if _, err := c.Run(ctx, "sysctl", "-p", c.ConfPath); err != nil {
		return fmt.Errorf("reloading sysctl settings: %w", err)
	}
	return nil
}
