package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/openspec/workflow"
)

func newTasksCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks <change-id>",
		Short: "Show a change's task list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}

			if _, err := a.manager.LoadChange(id); err != nil {
				return err
			}

			content, err := a.manager.ReadTasks(id)
			if err != nil {
				return fmt.Errorf("reading tasks: %w", err)
			}

			tasks := workflow.ParseTasks(content)
			out := cmd.OutOrStdout()
			section := ""
			for _, task := range tasks {
				if task.Section != section {
					section = task.Section
					fmt.Fprintf(out, "%s\n", section)
				}
				mark := " "
				if task.Completed {
					mark = "x"
				}
				fmt.Fprintf(out, "  [%s] %s %s\n", mark, task.ID, task.Description)
			}

			total, completed := workflow.TaskStats(tasks)
			fmt.Fprintf(out, "%d/%d complete\n", completed, total)
			return nil
		},
	}

	return cmd
}
