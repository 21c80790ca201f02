package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/config"
	"github.com/javiermolinar/weekplan/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.
Use 'weekplan settings' for the weekly time grid.

Example:
  weekplan config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *App) runConfigInteractive(in io.Reader, out io.Writer) error {
	configPath := a.configPath
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Storage.Driver = promptValue(reader, out, "Storage driver (sqlite, postgres)", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		cfg.Storage.DSN = promptValue(reader, out, "Postgres DSN", cfg.Storage.DSN)
	} else {
		cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	}
	cfg.User.Owner = promptValue(reader, out, "Owner", cfg.User.Owner)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)
	cfg.UI.Color = promptValue(reader, out, "Default task color (#rrggbb)", cfg.UI.Color)
	cfg.UI.SlotLines = promptInt(reader, out, "Lines per time slot (1-4)", cfg.UI.SlotLines)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	*a.config = *cfg

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[week]")
	fmt.Fprintf(out, "  start_hour       = %d\n", cfg.Week.StartHour)
	fmt.Fprintf(out, "  end_hour         = %d\n", cfg.Week.EndHour)
	fmt.Fprintf(out, "  global_interval  = %d\n", cfg.Week.GlobalInterval)
	fmt.Fprintf(out, "  exceptions       = %d\n", len(cfg.Week.Exceptions))
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  driver           = %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		fmt.Fprintf(out, "  dsn              = %s\n", cfg.Storage.DSN)
	} else {
		fmt.Fprintf(out, "  db_path          = %s\n", cfg.Storage.DBPath)
	}
	fmt.Fprintln(out, "\n[user]")
	fmt.Fprintf(out, "  owner            = %s\n", cfg.User.Owner)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintf(out, "  color            = %s\n", cfg.UI.Color)
	fmt.Fprintf(out, "  slot_lines       = %d\n", cfg.UI.SlotLines)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(out, "  Invalid number %q\n", value)
	}
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
