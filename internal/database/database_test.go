package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strikerbot/planner/internal/model"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

func TestMigrateAndStoreTrajectory(t *testing.T) {
	db, err := GetSqliteDBStandalone(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	session := model.Session{Label: "drill"}
	require.NoError(t, db.Create(&session).Error)

	traj, err := model.NewTrajectory(&core.Trajectory{
		SessionID:   session.ID,
		Kind:        core.TrajectoryBall,
		PlayerIndex: core.BallPlayerIndex,
		Samples: []core.BodyState{
			{Position: vmath.V3(0, 0, 2), Time: core.GameTimeFromSeconds(1)},
			{Position: vmath.V3(0, 5, 2), Time: core.GameTimeFromSeconds(2)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&traj).Error)

	var loaded model.Trajectory
	require.NoError(t, db.First(&loaded, traj.ID).Error)
	back, err := loaded.ToCore()
	require.NoError(t, err)
	assert.Equal(t, vmath.V3(0, 5, 2), back.Samples[1].Position)

	ls, ok := loaded.Path.AsLineString()
	require.True(t, ok)
	assert.Equal(t, 2, ls.Coordinates().Length())
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := GetSqliteDBStandalone(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Session{Label: "dumped"}).Error)

	target := filepath.Join(dir, "dumps", "snapshot.db")
	require.NoError(t, DumpMemoryDBToDisk(db, target))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, target))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	copyDB, err := GetSqliteDBStandalone(target)
	require.NoError(t, err)
	var count int64
	require.NoError(t, copyDB.Model(&model.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	assert.Error(t, DumpMemoryDBToDisk(nil, ""))
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.db"), 0755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)
}

func TestManagerConnect_FallsBackToSQLite(t *testing.T) {
	t.Setenv("PGCONNECT_TIMEOUT", "1")
	m := NewManager(zerolog.Nop())
	m.SqliteFilePath = filepath.Join(t.TempDir(), "fallback.db")

	// no viper config: the postgres DSN points at an empty host and fails
	require.NoError(t, m.Connect())
	t.Cleanup(func() { _ = m.Close() })

	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	require.NoError(t, m.Setup())
}
