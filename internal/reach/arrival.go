package reach

import (
	"math"
	"time"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// StrikeProfile describes how the car finishes its approach to the ball.
type StrikeProfile struct {
	// TravelDelay is added to the arrival time, e.g. time spent jumping.
	TravelDelay float64
	// DodgeSeconds is how long the strike's dodge lasts; zero for none.
	DodgeSeconds float64
	// SpeedBoost is the speed gained by the dodge.
	SpeedBoost float64
	Style      string
}

// Common strike profiles.
var (
	StrikeDriveInto = StrikeProfile{Style: "drive"}
	StrikeFlip      = StrikeProfile{TravelDelay: 0.1, DodgeSeconds: 0.3, SpeedBoost: physics.FrontFlipSpeedBoost, Style: "flip"}
	StrikeJumpHit   = StrikeProfile{TravelDelay: 0.3, Style: "jump"}
)

// SteerPenaltySeconds approximates how long the car spends turning toward
// target before it can drive at it. A little misalignment is free.
func SteerPenaltySeconds(car core.CarState, target vmath.Vector3) float64 {
	toTarget := target.Flatten().Sub(car.Position.Flatten())
	if toTarget.IsZero() {
		return 0
	}
	correction := car.Orientation.Nose.Flatten().CorrectionAngle(toTarget)
	err := math.Max(0, math.Abs(correction)-0.1)
	return err*0.1 + err*car.Velocity.Magnitude()*0.005
}

// MotionUponArrival estimates when and how fast the car reaches destination,
// including time spent steering and the strike's travel delay.
func (p *Profile) MotionUponArrival(car core.CarState, destination vmath.Vector3, strike StrikeProfile) (Estimate, bool) {
	orient := SteerPenaltySeconds(car, destination) + strike.TravelDelay
	distance := car.Position.FlatDistance(destination)

	est, ok := p.TravelTime(distance)
	if !ok {
		return Estimate{}, false
	}
	est.Elapsed += core.DurationOf(orient)
	return est, true
}

// MotionAfterDuration estimates how far the car gets toward target within
// total, spending the steering penalty first and finishing with the strike's
// dodge if it has one.
func (p *Profile) MotionAfterDuration(car core.CarState, target vmath.Vector3, total time.Duration, strike StrikeProfile) (Estimate, bool) {
	orient := SteerPenaltySeconds(car, target) + strike.TravelDelay
	accelerating := math.Max(0, total.Seconds()-orient)

	if strike.DodgeSeconds == 0 || strike.SpeedBoost == 0 {
		est, ok := p.DistanceAt(core.DurationOf(accelerating))
		if !ok {
			return Estimate{}, false
		}
		est.Elapsed = total
		return est, true
	}

	if accelerating < strike.DodgeSeconds {
		// not enough time for the whole dodge
		speed := math.Min(p.StartPoint().Speed+strike.SpeedBoost, physics.SupersonicSpeed)
		return Estimate{Elapsed: total, Distance: speed * accelerating, Speed: speed}, true
	}

	before, ok := p.DistanceAt(core.DurationOf(accelerating - strike.DodgeSeconds))
	if !ok {
		return Estimate{}, false
	}
	speed := math.Min(before.Speed+strike.SpeedBoost, physics.SupersonicSpeed)
	return Estimate{
		Elapsed:      total,
		Distance:     before.Distance + speed*strike.DodgeSeconds,
		Speed:        speed,
		Extrapolated: before.Extrapolated,
	}, true
}
