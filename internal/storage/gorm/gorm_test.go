package gormstorage

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strikerbot/planner/internal/database"
	"github.com/strikerbot/planner/internal/model"
	"github.com/strikerbot/planner/internal/storage"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDBStandalone(filepath.Join(t.TempDir(), "gorm.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func path(n int) *core.Trajectory {
	t := &core.Trajectory{Label: "drill", PlayerIndex: 0}
	for i := 0; i < n; i++ {
		t.Samples = append(t.Samples, core.BodyState{
			Position: vmath.V3(0, float64(i), 2),
			Time:     core.GameTimeFromSeconds(float64(i) / 10),
		})
	}
	return t
}

func TestInit_NoDatabase(t *testing.T) {
	b := New(Dependencies{})
	assert.ErrorIs(t, b.Init(), ErrNoDatabase)
	assert.NoError(t, b.Close())
}

func TestStartSession_AssignsID(t *testing.T) {
	b := newTestBackend(t)

	s := &core.Session{Label: "kickoffs", StartTime: time.Now().UTC(), Team: core.TeamOrange}
	require.NoError(t, b.StartSession(s))

	assert.NotZero(t, s.ID)
	assert.Equal(t, s.ID, b.SessionID())

	var row model.Session
	require.NoError(t, b.DB().First(&row, s.ID).Error)
	assert.Equal(t, "kickoffs", row.Label)
	assert.Equal(t, 1, row.Team)
}

func TestRecord_QueuesUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{Label: "queued"}))

	require.NoError(t, b.RecordBallPath(path(3)))
	require.NoError(t, b.RecordCarPath(path(2)))
	require.NoError(t, b.RecordPredictionError(&core.PredictionError{Distance: 1.5}))
	assert.Equal(t, 3, b.Pending())

	var count int64
	require.NoError(t, b.DB().Model(&model.Trajectory{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, b.Flush())
	assert.Zero(t, b.Pending())

	var rows []model.Trajectory
	require.NoError(t, b.DB().Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "ball", rows[0].Kind)
	assert.Equal(t, "car", rows[1].Kind)
	assert.Equal(t, b.SessionID(), rows[0].SessionID)
	assert.Equal(t, 3, rows[0].SampleCount)

	var errs []model.PredictionError
	require.NoError(t, b.DB().Find(&errs).Error)
	require.Len(t, errs, 1)
	assert.InDelta(t, 1.5, errs[0].Distance, 1e-9)
}

func TestRecord_RejectsShortTrajectory(t *testing.T) {
	b := newTestBackend(t)
	assert.Error(t, b.RecordBallPath(path(1)))
	assert.Zero(t, b.Pending())
}

func TestEndSession_FlushesAndStampsEnd(t *testing.T) {
	b := newTestBackend(t)
	s := &core.Session{Label: "ending"}
	require.NoError(t, b.StartSession(s))
	require.NoError(t, b.RecordBallPath(path(4)))

	require.NoError(t, b.EndSession())

	assert.Zero(t, b.Pending())
	assert.Zero(t, b.SessionID())

	var row model.Session
	require.NoError(t, b.DB().First(&row, s.ID).Error)
	assert.False(t, row.EndTime.IsZero())

	var traj model.Trajectory
	require.NoError(t, b.DB().First(&traj).Error)
	back, err := traj.ToCore()
	require.NoError(t, err)
	assert.Len(t, back.Samples, 4)
}

func TestClose_WritesRemainingRows(t *testing.T) {
	db, err := database.GetSqliteDBStandalone(filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartSession(&core.Session{Label: "close"}))
	require.NoError(t, b.RecordCarPath(path(2)))

	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Trajectory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPredictionError_RejectsNonFinite(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{Label: "nan"}))

	err := b.RecordPredictionError(&core.PredictionError{Actual: vmath.V3(math.NaN(), 0, 0)})
	assert.Error(t, err)
	assert.Zero(t, b.Pending())
}
