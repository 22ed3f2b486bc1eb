// Package deps ensures the host utilities the tuning operations shell out to
// are installed, using whichever package manager the distribution provides.
package deps

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/systune/pkg/systune/execx"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// ErrUnsupportedPkgMgr is returned when no known package manager is found.
var ErrUnsupportedPkgMgr = errors.New("no supported package manager found")

// Kind identifies a host package manager.
type Kind string

// Supported package managers, in detection order.
const (
	Apt    Kind = "apt-get"
	Dnf    Kind = "dnf"
	Yum    Kind = "yum"
	Zypper Kind = "zypper"
)

// detectionOrder lists managers in preference order: apt covers Debian
// derivatives, dnf supersedes yum on modern Fedora/RHEL.
var detectionOrder = []Kind{Apt, Dnf, Yum, Zypper}

// packageAliases maps canonical utility package names to the name each
// package manager family ships them under, where it differs. cpupower lives
// in the kernel tools package, which every family names differently.
var packageAliases = map[string]map[Kind]string{
	"cpupower": {
		Apt:    "linux-tools-common",
		Dnf:    "kernel-tools",
		Yum:    "kernel-tools",
		Zypper: "cpupower",
	},
}

// Manager installs packages through the detected package manager.
type Manager struct {
	kind Kind

	// Run executes external commands. Defaults to execx.Run.
	Run execx.Runner

	// available reports whether a utility is on PATH. Overridable for tests.
	available func(string) bool
}

// Detect finds the host's package manager.
func Detect() (*Manager, error) {
	return detect(execx.Available)
}

// detect is the testable core of Detect.
func detect(available func(string) bool) (*Manager, error) {
	for _, kind := range detectionOrder {
		if available(string(kind)) {
			return &Manager{kind: kind, Run: execx.Run, available: available}, nil
		}
	}
	return nil, ErrUnsupportedPkgMgr
}

// Kind returns the detected package manager.
func (m *Manager) Kind() Kind {
	return m.kind
}

// resolve maps a canonical package name to the manager's package name.
func (m *Manager) resolve(pkg string) string {
	if byKind, ok := packageAliases[pkg]; ok {
		if name, ok := byKind[m.kind]; ok {
			return name
		}
	}
	return pkg
}

// Installed reports whether a package is installed.
func (m *Manager) Installed(ctx context.Context, pkg string) bool {
	pkg = m.resolve(pkg)
	switch m.kind {
	case Apt:
		_, err := m.Run(ctx, "dpkg", "-s", pkg)
		return err == nil
	default:
		_, err := m.Run(ctx, "rpm", "-q", pkg)
		return err == nil
	}
}

// Install installs a package non-interactively.
func (m *Manager) Install(ctx context.Context, pkg string) error {
	pkg = m.resolve(pkg)
	var err error
	switch m.kind {
	case Apt:
		_, err = m.Run(ctx, "apt-get", "install", "-y", pkg)
	case Zypper:
		_, err = m.Run(ctx, "zypper", "--non-interactive", "install", pkg)
	default:
		_, err = m.Run(ctx, string(m.kind), "install", "-y", pkg)
	}
	if err != nil {
		return fmt.Errorf("installing %s via %s: %w", pkg, m.kind, err)
	}
	return nil
}

// EnsureAll checks each required package and installs the missing ones.
// The first install failure aborts: the tuning operations cannot run with
// their utilities absent, so the caller is expected to exit non-zero.
func (m *Manager) EnsureAll(ctx context.Context, pkgs []string) error {
	logger := logging.Get("deps")

	for _, pkg := range pkgs {
		if m.Installed(ctx, pkg) {
			logger.Info("package already installed", "package", pkg)
			continue
		}
		logger.Info("installing package", "package", pkg, "manager", m.kind)
		if err := m.Install(ctx, pkg); err != nil {
			logger.Error("package installation failed", "package", pkg, "error", err)
			return err
		}
		logger.Info("package installed", "package", pkg)
	}
	return nil
}
