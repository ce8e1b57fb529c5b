package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/c360studio/openspec/workflow"
	"github.com/c360studio/openspec/workflow/validation"
)

func newValidateCmd(logLevel *string) *cobra.Command {
	var (
		strict bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "validate <change-id>",
		Short: "Validate a change and promote it to validated",
		Long: `Validate checks a change's proposal sections, task list syntax,
spec delta structure, and capability cross-references. A change with
no errors is promoted to validated; with --strict warnings block
promotion too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}
			if a.cfg.Validation.Strict {
				strict = true
			}

			if watch {
				return watchAndValidate(cmd, a, id, strict)
			}

			report, err := runValidate(cmd, a, id, strict)
			if err != nil {
				var failed *workflow.ValidationFailedError
				if errors.As(err, &failed) {
					return &exitError{code: 1, err: err}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Change %s is valid (%d warning(s))\n", id, report.Warnings())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate when change files are edited")

	return cmd
}

func runValidate(cmd *cobra.Command, a *app, id string, strict bool) (*validation.Report, error) {
	report, err := a.lifecycle.Validate(id, strict)
	if report != nil {
		printReport(cmd, report)
	}
	return report, err
}

func printReport(cmd *cobra.Command, report *validation.Report) {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
	}
}

// watchAndValidate re-runs validation whenever files under the change
// directory change, until interrupted.
func watchAndValidate(cmd *cobra.Command, a *app, id string, strict bool) error {
	changeDir := a.manager.ChangePath(id)
	if _, err := os.Stat(changeDir); err != nil {
		return fmt.Errorf("%w: %s", workflow.ErrChangeNotFound, id)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the change dir and its per-capability spec dirs.
	dirs := []string{changeDir, filepath.Join(changeDir, workflow.ChangeSpecsDir)}
	deltas, err := a.manager.DeltaFiles(id)
	if err != nil {
		return err
	}
	for _, rel := range deltas {
		dirs = append(dirs, filepath.Join(changeDir, filepath.Dir(rel)))
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	validate := func() {
		if _, err := runValidate(cmd, a, id, strict); err != nil {
			var failed *workflow.ValidationFailedError
			if !errors.As(err, &failed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Change %s is valid\n", id)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", changeDir)
	validate()

	// Editors fire bursts of events; coalesce them with a short timer.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasSuffix(event.Name, workflow.LockFile) || strings.HasSuffix(event.Name, workflow.MetadataFile) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending = time.After(250 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-pending:
			pending = nil
			validate()
		case <-sig:
			return nil
		}
	}
}
