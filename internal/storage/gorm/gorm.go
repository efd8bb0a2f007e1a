// Package gormstorage implements the storage.Backend interface on top of GORM
// with internal queues and a background DB writer goroutine. Dialect-specific
// backends (sqlite, postgres) embed it and supply the connection.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strikerbot/planner/internal/database"
	"github.com/strikerbot/planner/internal/model"
	"github.com/strikerbot/planner/internal/queue"
	"github.com/strikerbot/planner/pkg/core"
	"gorm.io/gorm"
)

const defaultFlushInterval = 2 * time.Second

// ErrNoDatabase is returned by Init when no connection was injected.
var ErrNoDatabase = errors.New("no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps         Dependencies
	trajectories *queue.Queue[model.Trajectory]
	errors       *queue.Queue[model.PredictionError]
	sessionID    atomic.Uint64
	flushMu      sync.Mutex
	stopChan     chan struct{}
	done         chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:         deps,
		trajectories: queue.New[model.Trajectory](),
		errors:       queue.New[model.PredictionError](),
	}
}

// SetDB injects the connection. Dialect backends call it from Init.
func (b *Backend) SetDB(db *gorm.DB) { b.deps.DB = db }

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB { return b.deps.DB }

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}

	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Dialector.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	return b.Flush()
}

// StartSession inserts the session synchronously so its ID is known before
// any trajectory is queued.
func (b *Backend) StartSession(s *core.Session) error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	row := model.NewSession(s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	s.ID = row.ID
	b.sessionID.Store(uint64(row.ID))
	return nil
}

// SessionID is the session queued rows are stamped with.
func (b *Backend) SessionID() uint { return uint(b.sessionID.Load()) }

// EndSession writes queued rows and stamps the session's end time.
func (b *Backend) EndSession() error {
	id := b.SessionID()
	if id == 0 {
		return nil
	}
	flushErr := b.Flush()
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Update("end_time", time.Now().UTC()).Error
	b.sessionID.Store(0)
	if err != nil {
		return errors.Join(flushErr, fmt.Errorf("failed to close session %d: %w", id, err))
	}
	return flushErr
}

// RecordBallPath converts and queues a ball trajectory.
func (b *Backend) RecordBallPath(t *core.Trajectory) error {
	return b.queueTrajectory(t, core.TrajectoryBall)
}

// RecordCarPath converts and queues a car trajectory.
func (b *Backend) RecordCarPath(t *core.Trajectory) error {
	return b.queueTrajectory(t, core.TrajectoryCar)
}

func (b *Backend) queueTrajectory(t *core.Trajectory, kind core.TrajectoryKind) error {
	row, err := model.NewTrajectory(t)
	if err != nil {
		return fmt.Errorf("failed to convert %s trajectory: %w", kind, err)
	}
	row.Kind = string(kind)
	b.trajectories.Push(row)
	return nil
}

// RecordPredictionError converts and queues a prediction error.
func (b *Backend) RecordPredictionError(e *core.PredictionError) error {
	row, err := model.NewPredictionError(e)
	if err != nil {
		return fmt.Errorf("failed to convert prediction error: %w", err)
	}
	b.errors.Push(row)
	return nil
}

// Pending is the number of rows waiting for the writer.
func (b *Backend) Pending() int {
	return b.trajectories.Len() + b.errors.Len()
}

// Flush drains both queues into the DB now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	sessionID := b.SessionID()
	return errors.Join(
		writeQueue(b.deps.DB, b.trajectories, "trajectories", b.deps.Logger, func(items []model.Trajectory) {
			for i := range items {
				if items[i].SessionID == 0 {
					items[i].SessionID = sessionID
				}
			}
		}),
		writeQueue(b.deps.DB, b.errors, "prediction errors", b.deps.Logger, func(items []model.PredictionError) {
			for i := range items {
				if items[i].SessionID == 0 {
					items[i].SessionID = sessionID
				}
			}
		}),
	)
}

// writeLoop periodically drains queues into the DB.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches go back on the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}

	log.Debug("Wrote rows", "table", name, "count", len(items))
	return nil
}
