// Package main provides the openspec binary entry point.
// Openspec manages spec-driven change proposals: drafting, validating,
// applying, and archiving them against a project's capability specs.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "openspec"
)

// exitError carries a specific process exit code up to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Spec-driven change proposal manager",
		Long: `Openspec manages change proposals against a project's capability specs.

A change lives under openspec/changes/<id>/ with a proposal, a task
list, and spec deltas. Changes move through draft, validated, applied,
and archived; archiving merges the deltas into openspec/specs/.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInitCmd(&logLevel),
		newProposeCmd(&logLevel),
		newValidateCmd(&logLevel),
		newApplyCmd(&logLevel),
		newArchiveCmd(&logLevel),
		newListCmd(&logLevel),
		newStatusCmd(&logLevel),
		newTasksCmd(&logLevel),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
