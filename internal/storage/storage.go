// internal/storage/storage.go
package storage

import "github.com/strikerbot/planner/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Calls for one session arrive in order: StartSession, any number of
// Record calls, EndSession.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (StartSession assigns ID to the passed pointer)
	StartSession(s *core.Session) error
	EndSession() error

	// Recording
	RecordBallPath(t *core.Trajectory) error
	RecordCarPath(t *core.Trajectory) error
	RecordPredictionError(e *core.PredictionError) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the tuning dashboard.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
