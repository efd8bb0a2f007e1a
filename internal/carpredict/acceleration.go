// Package carpredict simulates a car driving flat out in a straight line to
// build its reach profile.
package carpredict

import (
	"math"
	"time"

	"github.com/strikerbot/planner/internal/assert"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/reach"
	"github.com/strikerbot/planner/pkg/core"
)

// Step is the integration step of the acceleration model.
const Step = time.Second / 60

// Assumption is the driving policy the profile is simulated under. Profiles
// for distinct assumptions differ and are cached separately.
type Assumption struct {
	// BoostBudget is how much boost the car may spend, capped by what it has.
	BoostBudget float64
	// FlipCutoffDistance enables front flips once boost is exhausted, as long
	// as the flip would land before this distance. Zero disables flips.
	FlipCutoffDistance float64
}

// FullBoost spends everything the car has.
var FullBoost = Assumption{BoostBudget: 100}

// NoBoost drives on throttle alone.
var NoBoost = Assumption{}

// SimulateAcceleration drives the car forward at full effort for horizon and
// records distance and speed every Step. A negative horizon is treated as zero.
func SimulateAcceleration(car core.CarState, horizon time.Duration, a Assumption) *reach.Profile {
	speed := car.ForwardSpeed()
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 0
	}
	boost := math.Min(a.BoostBudget, car.Boost)
	if math.IsNaN(boost) {
		boost = 0
	}
	distance := 0.0

	steps := int(max(horizon, 0) / Step)
	samples := make([]reach.Sample, 0, steps+1)
	samples = append(samples, reach.Sample{Speed: math.Max(speed, 0)})

	dt := Step.Seconds()
	flipRemaining := 0.0

	for i := 1; i <= steps; i++ {
		switch {
		case flipRemaining > 0:
			flipRemaining -= dt
		case speed < 0:
			speed = math.Min(0, speed+physics.BrakeAcceleration*dt)
		case boost > 0:
			speed += (physics.ThrottleAcceleration(speed) + physics.BoostAcceleration) * dt
			boost -= physics.BoostConsumption * dt
		case shouldFlip(a, speed, distance):
			speed += physics.FrontFlipSpeedBoost
			flipRemaining = physics.FrontFlipSeconds - dt
		default:
			speed += physics.ThrottleAcceleration(speed) * dt
		}
		speed = math.Min(speed, physics.CarMaxSpeed)

		if speed > 0 {
			distance += speed * dt
		}
		samples = append(samples, reach.Sample{
			Elapsed:  time.Duration(i) * Step,
			Distance: distance,
			Speed:    math.Max(speed, 0),
		})
	}

	p, err := reach.NewProfile(samples)
	if !assert.NoError(err, "acceleration profile") {
		p, _ = reach.NewProfile([]reach.Sample{{}})
	}
	return p
}

func shouldFlip(a Assumption, speed, distance float64) bool {
	if a.FlipCutoffDistance <= 0 || speed < physics.FrontFlipMinSpeed {
		return false
	}
	return distance+physics.FrontFlipDistance(speed) < a.FlipCutoffDistance
}
