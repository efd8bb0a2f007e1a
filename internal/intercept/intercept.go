// Package intercept finds the earliest moment the car can meet the ball.
package intercept

import (
	"time"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/reach"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

const (
	// NeedsAerialHeight is the contact height above which a ground strike
	// cannot reach.
	NeedsAerialHeight = 6.0
	aerialBoost       = 20.0
)

// Intercept is a place and time the car can be at the ball.
type Intercept struct {
	Position vmath.Vector3
	Time     core.GameTime
	Strike   reach.StrikeProfile
	// Spare is how much later than the first reachable moment this one is.
	Spare       time.Duration
	BoostNeeded float64
	Ball        physics.Slice
}

// Options narrow the search.
type Options struct {
	// Modifier offsets each ball position to the point the car aims for.
	Modifier vmath.Vector3
	// Accept filters slices; nil accepts all.
	Accept func(car core.CarState, target vmath.Vector3, at core.GameTime) bool
	// Strike picks a strike profile for a contact point; nil drives into it.
	Strike func(target vmath.Vector3) reach.StrikeProfile
}

// Find walks the ball path and returns the first slice the car can reach in
// time and that opts accepts. The returned moment is interpolated between the
// last slice out of reach and the first one in reach.
func Find(car core.CarState, path *physics.BallPath, profile *reach.Profile, opts Options) (Intercept, bool) {
	slices := path.Slices()

	var firstInRange *core.GameTime
	previousDeficiency := 0.0

	for i, slice := range slices {
		if slice.Time.Before(car.Time) {
			continue
		}
		target := slice.Position.Add(opts.Modifier)
		strike := reach.StrikeDriveInto
		if opts.Strike != nil {
			strike = opts.Strike(target)
		}

		est, ok := profile.MotionAfterDuration(car, target, slice.Time.Sub(car.Time), strike)
		if !ok {
			return Intercept{}, false
		}

		deficiency := car.Position.FlatDistance(target) - est.Distance
		if deficiency <= 0 {
			if firstInRange == nil {
				t := slice.Time
				firstInRange = &t
			}
			if opts.Accept == nil || opts.Accept(car, target, slice.Time) {
				tweened := slice
				if i > 0 && !slices[i-1].Time.Before(car.Time) {
					tweened = tween(path, slices[i-1], slice, deficiency, previousDeficiency)
				}
				var spare time.Duration
				if tweened.Time.After(*firstInRange) {
					spare = tweened.Time.Sub(*firstInRange)
				}
				return Intercept{
					Position:    tweened.Position.Add(opts.Modifier),
					Time:        tweened.Time,
					Strike:      strike,
					Spare:       spare,
					BoostNeeded: boostNeeded(target.Z),
					Ball:        tweened,
				}, true
			}
		}
		previousDeficiency = deficiency
	}
	return Intercept{}, false
}

// tween estimates where between prev and cur the shortfall crossed zero.
func tween(path *physics.BallPath, prev, cur physics.Slice, shortfall, previousShortfall float64) physics.Slice {
	f := 1.0
	if previousShortfall > 0 {
		f = previousShortfall / (previousShortfall - shortfall)
	}
	moment := prev.Time.Plus(time.Duration(f * float64(cur.Time.Sub(prev.Time))))
	if s, ok := path.MotionAt(moment); ok {
		return s
	}
	return cur
}

func boostNeeded(height float64) float64 {
	if height > NeedsAerialHeight {
		return aerialBoost
	}
	return 0
}
