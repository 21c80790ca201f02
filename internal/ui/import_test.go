package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/weekplan/internal/db"
	"github.com/javiermolinar/weekplan/internal/task"
)

func seedSource(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	source, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = source.Close() }()

	date := time.Date(2025, 2, 3, 0, 0, 0, 0, time.Local)
	single, err := task.NewSingle("other", "Dentist", date, "15:00", "16:00")
	require.NoError(t, err)
	require.NoError(t, source.CreateTask(ctx, single))

	gym, err := task.Expand(task.Template{OwnerID: "other", Title: "Gym", StartTime: "07:00", EndTime: "08:00"}, date, []int{0, 2})
	require.NoError(t, err)
	require.NoError(t, source.CreateTasks(ctx, gym))
}

func TestImportTasks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")
	seedSource(t, sourcePath)

	source, err := db.OpenSQLite(ctx, sourcePath)
	require.NoError(t, err)
	defer func() { _ = source.Close() }()
	dest, err := db.OpenSQLite(ctx, filepath.Join(dir, "dest.db"))
	require.NoError(t, err)
	defer func() { _ = dest.Close() }()

	count, err := importTasks(ctx, source, dest, "other", "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	imported, err := dest.ListTasksByRange(ctx, "tester", allTime.Start, allTime.End)
	require.NoError(t, err)
	require.Len(t, imported, 3)

	original, err := source.ListTasksByRange(ctx, "other", allTime.Start, allTime.End)
	require.NoError(t, err)

	var groups []string
	for i, got := range imported {
		assert.Equal(t, "tester", got.OwnerID)
		assert.NotEqual(t, original[i].ID, got.ID)
		assert.True(t, original[i].Start.Equal(got.Start))
		if got.IsRecurring() {
			groups = append(groups, got.GroupID)
		}
	}
	require.Len(t, groups, 2)
	assert.Equal(t, groups[0], groups[1])
	assert.NotEqual(t, original[0].GroupID, groups[0])

	// The same tasks again overlap what was just imported.
	_, err = importTasks(ctx, source, dest, "other", "tester")
	assert.ErrorIs(t, err, task.ErrConflict)
	after, err := dest.ListTasksByRange(ctx, "tester", allTime.Start, allTime.End)
	require.NoError(t, err)
	assert.Len(t, after, 3)
}

func TestImportTasks_EmptySource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	source, err := db.OpenSQLite(ctx, filepath.Join(dir, "source.db"))
	require.NoError(t, err)
	defer func() { _ = source.Close() }()

	count, err := importTasks(ctx, source, source, "nobody", "tester")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportCmd_SameDatabase(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(t, "", "import", e.cfg.Storage.DBPath)
	assert.ErrorContains(t, err, "matches current database")
}

func TestImportCmd(t *testing.T) {
	e := newTestEnv(t)
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	seedSource(t, sourcePath)

	out := e.mustRun(t, "import", sourcePath, "--owner=other")
	assert.Equal(t, "Imported 3 tasks from "+sourcePath+"\n", out)
	assert.Len(t, e.tasks(t), 3)
}
