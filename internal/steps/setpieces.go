package steps

import (
	"time"

	"github.com/strikerbot/planner/internal/plan"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

var (
	throttle = core.ControlOutput{Throttle: 1}
	jump     = throttle.WithJump(true)
)

// FrontFlip jumps and dodges forward for a burst of speed.
func FrontFlip() *plan.Plan {
	return plan.New(plan.Neutral,
		NewBlindStep(50*time.Millisecond, jump),
		NewBlindStep(50*time.Millisecond, throttle.WithPitch(-1)),
		NewBlindStep(50*time.Millisecond, jump.WithPitch(-1)),
		NewBlindStep(800*time.Millisecond, throttle),
	)
}

// HalfFlip turns the car around quickly: a backflip cancelled halfway and
// rolled upright. The roll direction favours the side target is on.
func HalfFlip(car core.CarState, target vmath.Vector2) *plan.Plan {
	away := car.Position.Flatten().Sub(target)
	roll := vmath.NonZeroSignum(car.Orientation.Nose.Flatten().CorrectionAngle(away))

	reverse := core.ControlOutput{Throttle: -1}
	return plan.New(plan.Neutral,
		NewBlindStep(50*time.Millisecond, reverse.WithJump(true)),
		NewBlindStep(50*time.Millisecond, reverse),
		NewBlindStep(50*time.Millisecond, reverse.WithJump(true).WithPitch(1)),
		NewBlindStep(150*time.Millisecond, reverse.WithPitch(1)),
		NewBlindStep(400*time.Millisecond, throttle.WithPitch(-1).WithRoll(roll)),
		NewBlindStep(300*time.Millisecond, throttle.WithBoost(true)),
	)
}

// JumpHit holds jump for hang, then dodges into the ball.
func JumpHit(hang time.Duration) *plan.Plan {
	return plan.New(plan.Neutral,
		NewBlindStep(hang, jump),
		NewBlindStep(20*time.Millisecond, throttle),
		NewBlindStep(50*time.Millisecond, jump.WithPitch(-1)),
		NewBlindStep(600*time.Millisecond, throttle),
	)
}
