// Package defense contains steps that bring the car back to protect its goal.
package defense

import (
	"log/slog"
	"math"

	"github.com/strikerbot/planner/internal/plan"
	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/strategy"
	"github.com/strikerbot/planner/pkg/core"
)

// minSecondsRemaining is how close to the target the step hands control back.
const minSecondsRemaining = 1.5

// GetOnDefenseStep drives back toward the defended goal while the ball
// threatens it. It completes once defence is no longer needed or the car is
// nearly there, and re-evaluates from scratch if run again.
//
// When a flip sub-plan finishes, the step re-evaluates on that same tick
// instead of completing with the sub-plan's empty output, so the car is never
// left without input for a tick.
type GetOnDefenseStep struct {
	plan.NestedPlan

	target *planning.SplineHandle
}

func NewGetOnDefenseStep() *GetOnDefenseStep {
	return &GetOnDefenseStep{}
}

func (s *GetOnDefenseStep) Begin() {}

// targetFor resolves the goal's navigation target on first use.
func (s *GetOnDefenseStep) targetFor(team core.Team) planning.SplineHandle {
	if s.target == nil {
		h := planning.OwnGoal(team).NavigationSpline
		s.target = &h
	}
	return *s.target
}

func (s *GetOnDefenseStep) Output(in *core.Snapshot) (core.ControlOutput, bool) {
	target := s.targetFor(in.Team)

	if out, ok := s.ActiveOutput(in); ok {
		return out, true
	}

	car, ok := in.MyCar()
	if !ok {
		return core.ControlOutput{}, false
	}

	secondsRemaining := math.Inf(1)
	if speed := car.Velocity.Magnitude(); speed > 1e-6 {
		secondsRemaining = car.Position.FlatDistance(target.Location) / speed
	}

	if !strategy.NeedDefense(in) || secondsRemaining < minSecondsRemaining {
		return core.ControlOutput{}, false
	}

	aim := target.Location
	if !target.IsWithinHandleRange(car.Position) {
		aim = target.FarthestHandle(in.Ball.Position)
	}

	if flip, ok := planning.SensibleFlip(car, aim.Flatten()); ok {
		slog.Debug("flipping for defense", "player", car.PlayerIndex, "team", car.Team)
		if out, ok := s.StartPlan(flip, in); ok {
			return out, true
		}
	}
	return planning.SteerTowardGroundPosition(car, aim.Flatten()), true
}

func (s *GetOnDefenseStep) BlindlyComplete() bool { return false }

func (s *GetOnDefenseStep) Situation() string {
	if sub := s.SubSituation(); sub != "" {
		return "Getting on defense (" + sub + ")"
	}
	return "Getting on defense"
}
