package planning

import (
	"math"
	"time"

	"github.com/strikerbot/planner/internal/carpredict"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/plan"
	"github.com/strikerbot/planner/internal/steps"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

const goodEnoughAngle = math.Pi / 12

// CorrectionAngle is the signed turn from the car's heading to target.
// Positive turns left.
func CorrectionAngle(car core.CarState, target vmath.Vector2) float64 {
	toTarget := target.Sub(car.Position.Flatten())
	return car.Orientation.Nose.Flatten().CorrectionAngle(toTarget)
}

// SteerTowardGroundPosition drives at position flat out, braking and sliding
// for sharp turns close by.
func SteerTowardGroundPosition(car core.CarState, position vmath.Vector2) core.ControlOutput {
	return steeringOutput(
		CorrectionAngle(car, position),
		position.Distance(car.Position.Flatten()),
		car.Velocity.Magnitude(),
		car.Supersonic,
		false,
	)
}

// SteerTowardGroundPositionNoBoost is SteerTowardGroundPosition without boost.
func SteerTowardGroundPositionNoBoost(car core.CarState, position vmath.Vector2) core.ControlOutput {
	return steeringOutput(
		CorrectionAngle(car, position),
		position.Distance(car.Position.Flatten()),
		car.Velocity.Magnitude(),
		car.Supersonic,
		true,
	)
}

// BackUpTowardGroundPosition reverses toward position.
func BackUpTowardGroundPosition(car core.CarState, position vmath.Vector2) core.ControlOutput {
	positionToCar := car.Position.Flatten().Sub(position)
	correction := car.Orientation.Nose.Flatten().CorrectionAngle(positionToCar)
	return core.ControlOutput{}.
		WithThrottle(-1).
		WithSteer(vmath.Signum(correction) * math.Abs(correction) * 2).
		WithSlide(math.Abs(correction) > math.Pi/3).
		Clamped()
}

func steeringOutput(correction, distance, speed float64, supersonic, noBoost bool) core.ControlOutput {
	difference := math.Abs(correction)
	sharpness := difference*6/math.Pi + difference*speed*0.1

	brake := distance < 25 && difference > math.Pi/4 && speed > 25
	slide := brake || difference > math.Pi/2
	boost := !noBoost && !brake && difference < math.Pi/6 && !supersonic

	throttle := 1.0
	if brake {
		throttle = -1
	}
	return core.ControlOutput{}.
		WithThrottle(throttle).
		WithSteer(-vmath.Signum(correction) * sharpness).
		WithSlide(slide).
		WithBoost(boost).
		Clamped()
}

// GetThereOnTime steers toward position, easing off when the car would
// otherwise arrive well before arrival.
func GetThereOnTime(car core.CarState, position vmath.Vector2, arrival core.GameTime) core.ControlOutput {
	remaining := arrival.Sub(car.Time)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	profile := carpredict.SimulateAcceleration(car, remaining, carpredict.NoBoost)
	maxDistance := profile.EndPoint().Distance

	distance := car.Position.Flatten().Distance(position)
	out := SteerTowardGroundPosition(car, position)
	if distance == 0 {
		return out.WithBoost(false).WithThrottle(0)
	}

	ratio := maxDistance / distance
	needed := distance / remaining.Seconds()
	current := car.ForwardSpeed()

	if ratio > 1.1 {
		out = out.WithBoost(false)
		if current > needed {
			out = out.WithThrottle(math.Min(0, 1.5-ratio))
			if car.Orientation.Nose.Dot(car.Velocity) < 0 {
				out = out.WithThrottle(0).WithSteer(0)
			}
		} else if ratio > 1.5 {
			out = out.WithThrottle(0.5)
		}
	}
	if current > needed && current > 0 {
		out = out.WithBoost(false).WithThrottle(needed / current)
	}
	return out.Clamped()
}

// SensibleFlip returns a flip plan worth doing on the way to target, if any:
// a half flip when the target is far behind, a front flip when the car is
// fast, lined up and not about to arrive.
func SensibleFlip(car core.CarState, target vmath.Vector2) (*plan.Plan, bool) {
	if !car.IsUpright() || !car.HasWheelContact {
		return nil, false
	}

	toTarget := target.Sub(car.Position.Flatten())
	nose := car.Orientation.Nose.Flatten()
	if toTarget.Magnitude() > 40 &&
		vmath.Angle(nose, toTarget) > 3*math.Pi/4 &&
		(car.Velocity.Flatten().Dot(toTarget) > 0 || car.Velocity.Magnitude() < 5) {
		return steps.HalfFlip(car, target), true
	}

	speed := car.Velocity.Flatten().Magnitude()
	if car.Supersonic || car.Boost > 75 || speed < physics.FrontFlipMinSpeed {
		return nil, false
	}

	if toTarget.Magnitude() > physics.FrontFlipDistance(speed)+10 {
		facing := nose.CorrectionAngle(toTarget)
		slide := nose.CorrectionAngle(car.Velocity.Flatten())
		if math.Abs(facing) < goodEnoughAngle && math.Abs(slide) < goodEnoughAngle {
			return steps.FrontFlip(), true
		}
	}
	return nil, false
}
