package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/openspec/workflow"
)

func newProposeCmd(logLevel *string) *cobra.Command {
	var (
		title      string
		capability string
		author     string
	)

	cmd := &cobra.Command{
		Use:   "propose <change-id>",
		Short: "Scaffold a new change proposal",
		Long: `Propose creates openspec/changes/<change-id>/ with a proposal
document, a task list, and a spec delta stub. Change ids are
kebab-case and should start with a verb (add, update, remove, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}

			if err := a.manager.EnsureDirectories(); err != nil {
				return err
			}

			if title == "" {
				title = strings.ReplaceAll(id, "-", " ")
			}
			if author == "" {
				author = a.cfg.AuthorName()
			}

			change, err := a.manager.CreateChange(id, title, capability, author)
			if err != nil {
				if errors.Is(err, workflow.ErrInvalidID) || errors.Is(err, workflow.ErrDuplicateID) {
					return &exitError{code: 2, err: err}
				}
				return err
			}

			if !workflow.IsVerbLed(id, a.cfg.Validation.ExtraVerbs) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: change id %q does not start with a known verb\n", id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created change %s (%s)\n", change.ID, change.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", a.manager.ProposalPath(id))
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", a.manager.TasksPath(id))
			for _, delta := range change.Files.Deltas {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", delta)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Human-readable change title")
	cmd.Flags().StringVarP(&capability, "capability", "c", "", "Capability the delta stub targets")
	cmd.Flags().StringVar(&author, "author", "", "Change author (defaults to config or $USER)")

	return cmd
}
