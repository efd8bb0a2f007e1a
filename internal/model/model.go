package model

import (
	"encoding/json"
	"fmt"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/strikerbot/planner/internal/geo"
	"github.com/strikerbot/planner/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&Trajectory{},
	&PredictionError{},
}

// Geometry stores a simplefeatures geometry as WKB.
type Geometry struct {
	geom.Geometry
}

// GormDataType is the generic column kind.
func (Geometry) GormDataType() string { return "bytes" }

// GormDBDataType picks the binary column type per dialect.
func (Geometry) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bytea"
	}
	return "blob"
}

// Session is one recording run
type Session struct {
	gorm.Model
	Label       string    `json:"label" gorm:"size:127"`
	StartTime   time.Time `json:"startTime" gorm:"index:idx_session_start"`
	EndTime     time.Time `json:"endTime"`
	PlayerIndex int       `json:"playerIndex"`
	Team        int       `json:"team"`

	Trajectories     []Trajectory      `json:"-"`
	PredictionErrors []PredictionError `json:"-"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Trajectory is a recorded ball or car path.
// Path is a LineStringZM of [x, y, z, gameSeconds]; Samples keeps the full
// body states including velocity and spin.
type Trajectory struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID   uint           `json:"sessionId" gorm:"index:idx_trajectory_session_id"`
	Session     Session        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Kind        string         `json:"kind" gorm:"size:8;index:idx_trajectory_kind"`
	Label       string         `json:"label" gorm:"size:127"`
	PlayerIndex int            `json:"playerIndex"`
	StartTime   float64        `json:"startTime"`
	Duration    float64        `json:"duration"`
	SampleCount int            `json:"sampleCount"`
	Path        Geometry       `json:"-"`
	Samples     datatypes.JSON `json:"samples"`
}

func (*Trajectory) TableName() string {
	return "trajectories"
}

// PredictionError is one ball prediction checked against the observed ball.
type PredictionError struct {
	ID              uint     `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID       uint     `json:"sessionId" gorm:"index:idx_prediction_error_session_id"`
	Session         Session  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	MadeAt          float64  `json:"madeAt"`
	PredictedMoment float64  `json:"predictedMoment" gorm:"index:idx_prediction_error_moment"`
	Lookahead       float64  `json:"lookahead"`
	Predicted       Geometry `json:"-"`
	Actual          Geometry `json:"-"`
	Distance        float64  `json:"distance"`
}

func (*PredictionError) TableName() string {
	return "prediction_errors"
}

// NewSession converts a core session.
func NewSession(s *core.Session) Session {
	return Session{
		Label:       s.Label,
		StartTime:   s.StartTime,
		PlayerIndex: s.PlayerIndex,
		Team:        int(s.Team),
	}
}

// NewTrajectory converts a core trajectory. Trajectories need at least two
// samples to form a path.
func NewTrajectory(t *core.Trajectory) (Trajectory, error) {
	ls, err := geo.LineStringFromSamples(t.Samples)
	if err != nil {
		return Trajectory{}, err
	}
	samples, err := json.Marshal(t.Samples)
	if err != nil {
		return Trajectory{}, fmt.Errorf("failed to marshal samples: %w", err)
	}
	return Trajectory{
		SessionID:   t.SessionID,
		Kind:        string(t.Kind),
		Label:       t.Label,
		PlayerIndex: t.PlayerIndex,
		StartTime:   t.Samples[0].Time.Seconds(),
		Duration:    t.Duration().Seconds(),
		SampleCount: len(t.Samples),
		Path:        Geometry{ls.AsGeometry()},
		Samples:     datatypes.JSON(samples),
	}, nil
}

// ToCore converts back. Full states come from Samples; the path geometry is
// only used when Samples is empty.
func (t *Trajectory) ToCore() (core.Trajectory, error) {
	out := core.Trajectory{
		SessionID:   t.SessionID,
		Kind:        core.TrajectoryKind(t.Kind),
		Label:       t.Label,
		PlayerIndex: t.PlayerIndex,
	}
	if len(t.Samples) > 0 {
		if err := json.Unmarshal(t.Samples, &out.Samples); err != nil {
			return core.Trajectory{}, fmt.Errorf("failed to unmarshal samples: %w", err)
		}
		return out, nil
	}
	samples, err := geo.SamplesFromGeometry(t.Path.Geometry)
	if err != nil {
		return core.Trajectory{}, err
	}
	out.Samples = samples
	return out, nil
}

// NewPredictionError converts a core prediction error.
func NewPredictionError(e *core.PredictionError) (PredictionError, error) {
	predicted, err := geo.PointFromVector(e.Predicted)
	if err != nil {
		return PredictionError{}, fmt.Errorf("predicted position: %w", err)
	}
	actual, err := geo.PointFromVector(e.Actual)
	if err != nil {
		return PredictionError{}, fmt.Errorf("actual position: %w", err)
	}
	return PredictionError{
		SessionID:       e.SessionID,
		MadeAt:          e.MadeAt.Seconds(),
		PredictedMoment: e.PredictedMoment.Seconds(),
		Lookahead:       e.Lookahead().Seconds(),
		Predicted:       Geometry{predicted.AsGeometry()},
		Actual:          Geometry{actual.AsGeometry()},
		Distance:        e.Distance,
	}, nil
}
