package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newArchiveCmd(logLevel *string) *cobra.Command {
	var (
		yes       bool
		skipSpecs bool
	)

	cmd := &cobra.Command{
		Use:   "archive <change-id>",
		Short: "Merge a change's deltas into the specs and archive it",
		Long: `Archive merges an applied change's spec deltas into openspec/specs/
and moves the change directory into openspec/archive/ under a
date-prefixed name. Archiving an already-archived change is a no-op.

With --skip-specs the merge is bypassed and only the move happens.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := newApp(*logLevel)
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Archive change %s and update project specs? [y/N] ", id)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := a.lifecycle.Archive(id, skipSpecs); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Change %s archived\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&skipSpecs, "skip-specs", false, "Archive without merging spec deltas")

	return cmd
}
