package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/grid"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (a *App) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the weekly time grid",
		Long: `Show the weekly view settings: the visible hours, the global slot
interval and the exception rules that use a different interval inside
a time range. Exception rules may not overlap each other.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printSettings(cmd.OutOrStdout(), a.config.Week)
		},
	}

	cmd.AddCommand(a.settingsWindowCmd())
	cmd.AddCommand(a.settingsExceptionCmd())
	return cmd
}

func (a *App) settingsWindowCmd() *cobra.Command {
	var startHour, endHour, interval int

	cmd := &cobra.Command{
		Use:     "window",
		Short:   "Set the visible hours and the global interval",
		Example: `  weekplan settings window --start-hour=7 --end-hour=22 --interval=30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			next := a.config.Week
			if cmd.Flags().Changed("start-hour") {
				next.StartHour = startHour
			}
			if cmd.Flags().Changed("end-hour") {
				next.EndHour = endHour
			}
			if cmd.Flags().Changed("interval") {
				next.GlobalInterval = interval
			}
			return a.saveSettings(cmd.OutOrStdout(), next)
		},
	}

	cmd.Flags().IntVar(&startHour, "start-hour", 0, "First visible hour (0-22)")
	cmd.Flags().IntVar(&endHour, "end-hour", 0, "Last visible hour (1-23)")
	cmd.Flags().IntVar(&interval, "interval", 0, fmt.Sprintf("Slot size in minutes %v", grid.GlobalIntervals))
	return cmd
}

func (a *App) settingsExceptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exception",
		Aliases: []string{"exceptions"},
		Short:   "Manage slot interval exception rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [start] [end] [interval]",
		Short: "Use a different interval between start and end",
		Long: `Add an exception rule. An interval of 0 turns the whole range into a
single slot.`,
		Example: `  weekplan settings exception add 12:00 13:00 60
  weekplan settings exception add 18:00 24:00 0`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid interval %q: %w", args[2], err)
			}
			next, err := a.config.Week.AddException(grid.ExceptionRule{Start: args[0], End: args[1], Interval: interval})
			if err != nil {
				return err
			}
			return a.saveSettings(cmd.OutOrStdout(), next)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [number]",
		Short: "Remove the exception rule with the number shown by 'settings'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule number %q: %w", args[0], err)
			}
			next, err := a.config.Week.RemoveException(n - 1)
			if err != nil {
				return err
			}
			return a.saveSettings(cmd.OutOrStdout(), next)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every exception rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			next := a.config.Week
			next.Exceptions = nil
			return a.saveSettings(cmd.OutOrStdout(), next)
		},
	})

	return cmd
}

// saveSettings validates next, stores it in the config file and prints it.
func (a *App) saveSettings(w io.Writer, next grid.WeekSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	prev := a.config.Week
	a.config.Week = next
	if err := a.config.SaveTo(a.configPath); err != nil {
		a.config.Week = prev
		return err
	}
	fmt.Fprintf(w, "Saved %s\n\n", a.configPath)
	return a.printSettings(w, next)
}

func (a *App) printSettings(w io.Writer, s grid.WeekSettings) error {
	slots := grid.BuildSlots(s)
	fmt.Fprintf(w, "Window:    %s-%s\n", task.MinutesToTime(s.WindowStart()), task.MinutesToTime(s.WindowEnd()))
	fmt.Fprintf(w, "Interval:  %dm\n", s.GlobalInterval)
	fmt.Fprintf(w, "Slots:     %d (axis height %.0f)\n", len(slots), grid.TotalHeight(slots))
	if len(s.Exceptions) == 0 {
		fmt.Fprintln(w, "Exceptions: none")
		return nil
	}
	fmt.Fprintln(w, "Exceptions:")
	for i, r := range s.Exceptions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r)
	}
	return nil
}
