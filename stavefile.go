//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

const (
	binaryName = "systune"
	mainPkg    = "./cmd/systune"
	binDir     = "bin"
)

// All runs the complete build pipeline.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Build compiles the systune binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(),
		"-o", filepath.Join(binDir, binaryName), mainPkg)
}

// Test runs all tests with race detection.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint if available, falling back to go vet.
func Lint() error {
	if _, err := sh.Output("golangci-lint", "--version"); err == nil {
		return sh.RunV("golangci-lint", "run", "./...")
	}
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binDir)
}

// buildLdflags assembles version information for the binary.
func buildLdflags() string {
	version := gitDescribe()
	commit := gitCommit()
	date := time.Now().UTC().Format(time.RFC3339)

	return strings.Join([]string{
		fmt.Sprintf("-X main.version=%s", version),
		fmt.Sprintf("-X main.commit=%s", commit),
		fmt.Sprintf("-X main.date=%s", date),
	}, " ")
}

// gitDescribe returns the current tag or "dev".
func gitDescribe() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "dev"
	}
	return out
}

// gitCommit returns the current commit hash or "none".
func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || out == "" {
		return "none"
	}
	return out
}
