package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/config"
	"github.com/javiermolinar/weekplan/internal/db"
	"github.com/javiermolinar/weekplan/internal/debuglog"
	"github.com/javiermolinar/weekplan/internal/holiday"
	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
	"github.com/javiermolinar/weekplan/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	repo       task.Repository
	ownsRepo   bool
	svc        *scheduler.Service
	holidays   *holiday.Calendar
	now        func() time.Time
	root       *cobra.Command
	debug      bool   // Enable debug logging
	debugPath  string // Debug log file
	noColor    bool
}

// Option configures an App.
type Option func(*App)

// WithRepository uses repo instead of opening the configured database.
// The caller keeps ownership of repo.
func WithRepository(repo task.Repository) Option {
	return func(a *App) { a.repo = repo }
}

// WithConfigPath sets where config and settings changes are saved.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithClock overrides the current time.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		holidays:   holiday.Default(),
		now:        time.Now,
		debugPath:  filepath.Join(os.TempDir(), debuglog.DefaultPath),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "weekplan",
		Short: "A weekly and monthly calendar planner",
		Long: `weekplan is a personal planner for the terminal.

Run without arguments to open the weekly calendar. Drag across the grid
with the mouse or press 'a' to add a block; 'm' switches to the monthly
overview of important events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			if err := debuglog.Init(a.debug, a.debugPath); err != nil {
				return err
			}
			debuglog.Log("COMMAND", map[string]any{"path": cmd.CommandPath(), "version": Version})
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			debuglog.Shutdown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(svc, a.config,
				tui.WithLogger(debuglog.Default()),
				tui.WithHolidays(a.holidays),
				tui.WithClock(a.now),
				tui.WithStatePath(tui.StatePath(a.config)),
			)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to temp file)")
	a.root.PersistentFlags().StringVar(&a.debugPath, "debug-file", a.debugPath, "Debug log path")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.settingsCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.monthCmd())
	a.root.AddCommand(a.doneCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weekplan %s (commit: %s)\n", Version, Commit)
		},
	}
}

// service opens the configured database on first use.
func (a *App) service(ctx context.Context) (*scheduler.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if a.repo == nil {
		target := a.config.Storage.DBPath
		if a.config.Storage.Driver == config.DriverPostgres {
			target = a.config.Storage.DSN
		}
		store, err := db.Open(ctx, a.config.Storage.Driver, target)
		if err != nil {
			return nil, err
		}
		a.repo = store
		a.ownsRepo = true
	}
	a.svc = scheduler.NewService(a.repo, a.config.User.Owner,
		scheduler.WithHolidays(a.holidays),
		scheduler.WithClock(a.now),
		scheduler.WithLogger(debuglog.Default()),
	)
	return a.svc, nil
}

// today returns midnight of the current day.
func (a *App) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the database if the app opened it.
func (a *App) Close() error {
	if a.ownsRepo && a.repo != nil {
		return a.repo.Close()
	}
	return nil
}
