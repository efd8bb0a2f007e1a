package postgres

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strikerbot/planner/internal/model"
	"github.com/strikerbot/planner/internal/storage"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
	"gorm.io/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestInitClose_WithInjectedDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())

	s := &core.Session{Label: "injected"}
	require.NoError(t, b.StartSession(s))
	require.NoError(t, b.RecordCarPath(&core.Trajectory{PlayerIndex: 2, Samples: []core.BodyState{
		{Position: vmath.V3(1, 1, 0), Time: 0},
		{Position: vmath.V3(2, 1, 0), Time: core.GameTimeFromSeconds(0.5)},
	}}))
	require.NoError(t, b.EndSession())

	var rows []model.Trajectory
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, s.ID, rows[0].SessionID)
	assert.Equal(t, 2, rows[0].PlayerIndex)

	require.NoError(t, b.Close())
}
