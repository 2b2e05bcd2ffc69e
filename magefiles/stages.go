//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// runBin invokes the built CLI with the given stage arguments.
func runBin(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", bin, args, err)
	}
	return nil
}

// Collect builds the CLI and scrapes the bill listing for a new run.
func Collect() error {
	mg.Deps(Build)
	return runBin("collect")
}

// Convert builds the CLI and converts the current run's PDFs to HTML.
func Convert() error {
	mg.Deps(Build)
	return runBin("convert")
}

// Analyze builds the CLI and reviews the current run's bills.
func Analyze() error {
	mg.Deps(Build)
	return runBin("analyze")
}

// Serve builds the CLI and starts the dashboard for the current run.
func Serve() error {
	mg.Deps(Build)
	return runBin("serve")
}
