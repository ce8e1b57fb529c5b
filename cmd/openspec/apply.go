package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newApplyCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <change-id>",
		Short: "Mark a validated change as implemented",
		Long: `Apply promotes a validated change to applied. It refuses when the
change files were edited after validation (re-run validate) or when
the task list still has unchecked items.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}

			if err := a.lifecycle.Apply(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Change %s applied\n", id)
			return nil
		},
	}

	return cmd
}
