package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	var (
		all        bool
		everything bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete [task-id]",
		Short: "Delete a task",
		Long: `Delete one task by its ID.

With --all every instance of the task's recurring group is removed.
With --everything all of your tasks are removed; it needs --yes.`,
		Example: `  weekplan delete <id>
  weekplan delete <id> --all
  weekplan delete --everything --yes`,
		Args: func(cmd *cobra.Command, args []string) error {
			if everything {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if everything {
				if !yes {
					return errors.New("refusing to delete every task without --yes")
				}
				n, err := svc.DeleteAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %d tasks\n", n)
				return nil
			}

			t, err := svc.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("finding task: %w", err)
			}
			if all {
				group, err := svc.Group(ctx, t.GroupID)
				if err != nil {
					return err
				}
				n, err := svc.DeleteGroup(ctx, t.GroupID)
				if err != nil {
					return err
				}
				days := make([]string, 0, len(group))
				for _, g := range group {
					days = append(days, g.Date().Format("1/2"))
				}
				fmt.Fprintf(out, "Deleted %d instances of %q (%s)\n", n, t.Title, strings.Join(days, ", "))
				return nil
			}
			if err := svc.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("deleting task: %w", err)
			}
			fmt.Fprintf(out, "Deleted %q\n", t.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every instance of a recurring task")
	cmd.Flags().BoolVar(&everything, "everything", false, "Delete all of your tasks")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm --everything")

	return cmd
}
