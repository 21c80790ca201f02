package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Toggle a task between done and open",
		Long: `Mark a task as done, or reopen it if it already is.

Example:
  weekplan done 0d9f6c1e-8a55-4f0e-a0c3-3e5f1b7c2d44`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			t, err := svc.ToggleDone(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("toggling task: %w", err)
			}

			state := "open"
			if t.Done {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %q as %s\n", t.Title, state)
			return nil
		},
	}
}
