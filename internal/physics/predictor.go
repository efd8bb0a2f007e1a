package physics

import (
	"time"

	"github.com/strikerbot/planner/pkg/core"
)

// PredictorConfig tunes when a cached path is thrown away.
type PredictorConfig struct {
	Horizon           time.Duration
	Step              time.Duration
	PositionTolerance float64
	VelocityTolerance float64
	// MinRemaining is the least horizon a reused path must still cover.
	MinRemaining time.Duration
}

// DefaultPredictorConfig matches the planner defaults.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		Horizon:           5 * time.Second,
		Step:              DefaultStep,
		PositionTolerance: 1.0,
		VelocityTolerance: 2.0,
		MinRemaining:      3 * time.Second,
	}
}

// Predictor keeps the last simulated ball path and only resimulates when the
// observed ball drifts away from it or the path runs short.
type Predictor struct {
	cfg  PredictorConfig
	path *BallPath
}

// NewPredictor creates a predictor with no cached path.
func NewPredictor(cfg PredictorConfig) *Predictor {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	return &Predictor{cfg: cfg}
}

// Path returns a ball path starting no later than the ball's time. refreshed
// reports whether a new simulation was run.
func (p *Predictor) Path(ball core.BallState) (path *BallPath, refreshed bool) {
	if p.path != nil && p.stillValid(ball) {
		return p.path, false
	}
	p.path = Simulate(ball, p.cfg.Horizon, p.cfg.Step)
	return p.path, true
}

// Invalidate forces the next call to resimulate.
func (p *Predictor) Invalidate() { p.path = nil }

func (p *Predictor) stillValid(ball core.BallState) bool {
	if p.path.EndPoint().Time.Sub(ball.Time) < p.cfg.MinRemaining {
		return false
	}
	expected, ok := p.path.MotionAt(ball.Time)
	if !ok {
		return false
	}
	return expected.Position.Distance(ball.Position) <= p.cfg.PositionTolerance &&
		expected.Velocity.Distance(ball.Velocity) <= p.cfg.VelocityTolerance
}
