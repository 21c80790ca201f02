package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/config"
	"github.com/javiermolinar/weekplan/internal/db"
	"github.com/javiermolinar/weekplan/internal/task"
)

// allTime bounds the range query that reads a whole database.
var allTime = struct{ Start, End time.Time }{
	Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.Local),
	End:   time.Date(9000, 1, 1, 0, 0, 0, 0, time.Local),
}

func (a *App) importCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "import [database_path]",
		Short: "Import tasks from another weekplan database",
		Long: `Import every task of an owner from another weekplan SQLite database
into the current one. Tasks get fresh ids and recurring groups stay
together. Nothing is imported if any task overlaps an existing one.

Example:
  weekplan import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if a.config.Storage.Driver != config.DriverPostgres {
				destPath, err := resolvePath(a.config.Storage.DBPath)
				if err != nil {
					return err
				}
				if sourcePath == destPath {
					return fmt.Errorf("source database matches current database")
				}
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			if _, err := a.service(cmd.Context()); err != nil {
				return err
			}
			source, err := db.OpenSQLite(cmd.Context(), sourcePath)
			if err != nil {
				return fmt.Errorf("opening source database: %w", err)
			}
			defer func() { _ = source.Close() }()

			if owner == "" {
				owner = a.config.User.Owner
			}
			count, err := importTasks(cmd.Context(), source, a.repo, owner, a.config.User.Owner)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks from %s\n", count, sourcePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner to import from the source (default: configured owner)")
	return cmd
}

// importTasks copies the tasks of fromOwner in source into dest as toOwner.
// The batch is checked for overlaps first and stored atomically.
func importTasks(ctx context.Context, source, dest task.Repository, fromOwner, toOwner string) (int, error) {
	tasks, err := source.ListTasksByRange(ctx, fromOwner, allTime.Start, allTime.End)
	if err != nil {
		return 0, fmt.Errorf("listing source tasks: %w", err)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	groups := make(map[string]string)
	copies := make([]*task.Task, 0, len(tasks))
	start, end := tasks[0].Start, tasks[0].End
	for _, t := range tasks {
		c := t.Clone()
		c.ID = task.NewID()
		c.OwnerID = toOwner
		if c.GroupID != "" {
			id, ok := groups[c.GroupID]
			if !ok {
				id = task.NewID()
				groups[c.GroupID] = id
			}
			c.GroupID = id
		}
		if c.End.After(end) {
			end = c.End
		}
		copies = append(copies, c)
	}

	existing, err := dest.ListTasksByRange(ctx, toOwner, start, end)
	if err != nil {
		return 0, fmt.Errorf("listing current tasks: %w", err)
	}
	if err := task.CheckBatch(copies, existing); err != nil {
		return 0, fmt.Errorf("checking imported tasks: %w", err)
	}

	if err := dest.CreateTasks(ctx, copies); err != nil {
		return 0, fmt.Errorf("importing tasks: %w", err)
	}
	return len(copies), nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
