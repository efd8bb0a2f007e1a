package tuning

import (
	"fmt"
	"time"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/prediction"
	"github.com/strikerbot/planner/pkg/core"
)

// Comparison summarises how far a simulated path strays from a recorded one.
type Comparison struct {
	Label      string
	Samples    int
	Horizon    time.Duration
	MeanError  float64
	MaxError   float64
	MaxErrorAt core.GameTime
	FinalError float64
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %d samples over %s, mean %.2f, max %.2f at %s, final %.2f",
		c.Label, c.Samples, c.Horizon, c.MeanError, c.MaxError, c.MaxErrorAt, c.FinalError)
}

// CompareBallPath looks up the simulated position at every recorded slice
// time and measures the distance. Recorded slices outside the simulated span
// are ignored. ok is false when no recorded slice overlaps.
func CompareBallPath(recorded, simulated *physics.BallPath) (Comparison, bool) {
	var c Comparison
	var sum float64
	var last physics.Slice
	for _, rec := range recorded.Slices() {
		sim, ok := simulated.MotionAt(rec.Time)
		if !ok {
			continue
		}
		d := rec.Position.Distance(sim.Position)
		if c.Samples == 0 || d > c.MaxError {
			c.MaxError = d
			c.MaxErrorAt = rec.Time
		}
		sum += d
		c.Samples++
		c.FinalError = d
		last = rec
	}
	if c.Samples == 0 {
		return Comparison{}, false
	}
	c.MeanError = sum / float64(c.Samples)
	c.Horizon = last.Time.Sub(recorded.StartPoint().Time)
	return c, true
}

// Replay simulates the ball from the recording's first slice across the
// recording's horizon.
func Replay(recorded *physics.BallPath, step time.Duration) *physics.BallPath {
	return physics.Simulate(recorded.StartPoint().Ball(), recorded.Horizon(), step)
}

// CompareRecord replays a ball record and compares the result with it.
func CompareRecord(r Record, step time.Duration) (Comparison, error) {
	if r.Kind != core.TrajectoryBall {
		return Comparison{}, fmt.Errorf("%w: cannot replay a %s record", ErrMalformedRecord, r.Kind)
	}
	recorded, err := r.BallPath()
	if err != nil {
		return Comparison{}, err
	}
	c, ok := CompareBallPath(recorded, Replay(recorded, step))
	if !ok {
		return Comparison{}, fmt.Errorf("%w: recording %q does not overlap its replay", ErrMalformedRecord, r.Label)
	}
	c.Label = r.Label
	return c, nil
}

// PredictionError measures a stored prediction against the ball observed at
// its moment.
func PredictionError(entry prediction.Entry, actual core.BallState) core.PredictionError {
	return core.PredictionError{
		MadeAt:          entry.MadeAt,
		PredictedMoment: entry.PredictedMoment,
		Predicted:       entry.Ball.Position,
		Actual:          actual.Position,
		Distance:        entry.Ball.Position.Distance(actual.Position),
	}
}
