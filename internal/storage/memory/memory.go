// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/strikerbot/planner/internal/config"
	"github.com/strikerbot/planner/pkg/core"
)

// ErrNoSession is returned when recording outside StartSession/EndSession.
var ErrNoSession = errors.New("no session started")

// Backend stores session data in memory and exports line-delimited JSON
// recordings when the session ends.
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	ballPaths []core.Trajectory
	carPaths  []core.Trajectory
	errors    []core.PredictionError

	idCounter      uint
	lastExportPath string
	lastExportMeta core.UploadMetadata
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	b.session = s

	b.ballPaths = nil
	b.carPaths = nil
	b.errors = nil

	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	err := b.exportJSON()
	b.session = nil
	return err
}

// RecordBallPath stores a finished ball trajectory
func (b *Backend) RecordBallPath(t *core.Trajectory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	rec := *t
	rec.SessionID = b.session.ID
	rec.Kind = core.TrajectoryBall
	b.ballPaths = append(b.ballPaths, rec)
	return nil
}

// RecordCarPath stores a finished car trajectory
func (b *Backend) RecordCarPath(t *core.Trajectory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	rec := *t
	rec.SessionID = b.session.ID
	rec.Kind = core.TrajectoryCar
	b.carPaths = append(b.carPaths, rec)
	return nil
}

// RecordPredictionError stores one checked prediction
func (b *Backend) RecordPredictionError(e *core.PredictionError) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	rec := *e
	rec.SessionID = b.session.ID
	b.errors = append(b.errors, rec)
	return nil
}

// BallPaths returns the ball trajectories of the current or last session.
func (b *Backend) BallPaths() []core.Trajectory {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Trajectory(nil), b.ballPaths...)
}

// CarPaths returns the car trajectories of the current or last session.
func (b *Backend) CarPaths() []core.Trajectory {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Trajectory(nil), b.carPaths...)
}

// PredictionErrors returns the prediction errors of the current or last session.
func (b *Backend) PredictionErrors() []core.PredictionError {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.PredictionError(nil), b.errors...)
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last exported file
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}
