package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/openspec/workflow"
)

func newStatusCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <change-id>",
		Short: "Show a change's status and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}

			change, err := a.manager.LoadChange(id)
			if errors.Is(err, workflow.ErrChangeNotFound) {
				change, err = a.manager.LoadArchivedChange(id)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", change.Title, change.Status)
			fmt.Fprintf(out, "  ID:          %s\n", change.ID)
			fmt.Fprintf(out, "  Capability:  %s\n", change.Capability)
			if change.Author != "" {
				fmt.Fprintf(out, "  Author:      %s\n", change.Author)
			}
			fmt.Fprintf(out, "  Created:     %s\n", change.CreatedAt.Format("2006-01-02 15:04"))
			if change.ValidatedAt != nil {
				fmt.Fprintf(out, "  Validated:   %s\n", change.ValidatedAt.Format("2006-01-02 15:04"))
			}
			if change.AppliedAt != nil {
				fmt.Fprintf(out, "  Applied:     %s\n", change.AppliedAt.Format("2006-01-02 15:04"))
			}
			if change.ArchivedAt != nil {
				fmt.Fprintf(out, "  Archived:    %s\n", change.ArchivedAt.Format("2006-01-02 15:04"))
			}

			if change.Status != workflow.StatusArchived {
				content, err := a.manager.ReadTasks(id)
				if err == nil {
					total, completed := workflow.TaskStats(workflow.ParseTasks(content))
					fmt.Fprintf(out, "  Tasks:       %d/%d complete\n", completed, total)
				}
			}
			for _, delta := range change.Files.Deltas {
				fmt.Fprintf(out, "  Delta:       %s\n", delta)
			}
			return nil
		},
	}

	return cmd
}
