package steps

import (
	"math"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// LineUpInReverseStep backs up and turns until the car's tail points at
// waypoint, so it can drive away from it.
type LineUpInReverseStep struct {
	waypoint vmath.Vector2

	correctionDirection *float64
}

func NewLineUpInReverseStep(waypoint vmath.Vector2) *LineUpInReverseStep {
	return &LineUpInReverseStep{waypoint: waypoint}
}

func (s *LineUpInReverseStep) Begin() {}

func (s *LineUpInReverseStep) Output(in *core.Snapshot) (core.ControlOutput, bool) {
	car, ok := in.MyCar()
	if !ok {
		return core.ControlOutput{}, false
	}

	waypointToCar := car.Position.Flatten().Sub(s.waypoint)
	correction := car.Orientation.Nose.Flatten().CorrectionAngle(waypointToCar)

	if s.correctionDirection == nil {
		d := vmath.NonZeroSignum(correction)
		s.correctionDirection = &d
	}
	dir := *s.correctionDirection

	yawRate := car.Spin.Dot(car.Orientation.Roof)
	future := correction - yawRate*0.3

	if future*dir < 0 && math.Abs(future) < math.Pi/4 {
		return core.ControlOutput{}, false
	}
	return core.ControlOutput{}.WithThrottle(-1).WithSteer(dir), true
}

func (s *LineUpInReverseStep) CanInterrupt() bool    { return true }
func (s *LineUpInReverseStep) BlindlyComplete() bool { return false }
func (s *LineUpInReverseStep) Situation() string     { return "Lining up in reverse" }
