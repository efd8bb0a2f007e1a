// pkg/core/recording.go
package core

import (
	"time"

	"github.com/strikerbot/planner/internal/vmath"
)

// Session groups the recordings captured between one start and stop.
type Session struct {
	ID          uint      `json:"id"`
	Label       string    `json:"label"`
	StartTime   time.Time `json:"startTime"`
	PlayerIndex int       `json:"playerIndex"`
	Team        Team      `json:"team"`
}

// TrajectoryKind says which body a trajectory follows.
type TrajectoryKind string

const (
	TrajectoryBall TrajectoryKind = "ball"
	TrajectoryCar  TrajectoryKind = "car"
)

// BallPlayerIndex marks a trajectory that follows the ball.
const BallPlayerIndex = -1

// Trajectory is a finished recording of one body, samples ascending in time.
type Trajectory struct {
	SessionID   uint           `json:"sessionId"`
	Kind        TrajectoryKind `json:"kind"`
	Label       string         `json:"label"`
	PlayerIndex int            `json:"playerIndex"`
	Samples     []BodyState    `json:"samples"`
}

// Duration is the span between the first and last sample.
func (t Trajectory) Duration() time.Duration {
	if len(t.Samples) < 2 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Time.Sub(t.Samples[0].Time)
}

// PredictionError pairs a ball prediction with the state observed at the
// predicted moment.
type PredictionError struct {
	SessionID       uint          `json:"sessionId"`
	MadeAt          GameTime      `json:"madeAt"`
	PredictedMoment GameTime      `json:"predictedMoment"`
	Predicted       vmath.Vector3 `json:"predicted"`
	Actual          vmath.Vector3 `json:"actual"`
	Distance        float64       `json:"distance"`
}

// Lookahead is how far ahead the prediction was made.
func (e PredictionError) Lookahead() time.Duration { return e.PredictedMoment.Sub(e.MadeAt) }

// UploadMetadata describes an exported recording file.
type UploadMetadata struct {
	Label       string
	Duration    float64
	Recordings  int
	MeanError   float64
	Tag         string
	PlayerIndex int
}
