package intercept

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/internal/carpredict"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

var start = core.GameTimeFromSeconds(100)

func car(pos vmath.Vector3, speed float64) core.CarState {
	return core.CarState{
		BodyState:       core.BodyState{Position: pos, Velocity: vmath.V3(0, speed, 0), Time: start},
		Orientation:     core.DefaultOrientation,
		HasWheelContact: true,
	}
}

func rollingBall(pos, vel vmath.Vector3) *physics.BallPath {
	ball := core.BallState{BodyState: core.BodyState{Position: pos, Velocity: vel, Time: start}}
	return physics.Simulate(ball, 4*time.Second, physics.DefaultStep)
}

func TestFind_StationaryBallAhead(t *testing.T) {
	c := car(vmath.Vector3{}, 0)
	path := rollingBall(vmath.V3(0, 30, physics.BallRadius), vmath.Vector3{})
	profile := carpredict.SimulateAcceleration(c, 4*time.Second, carpredict.NoBoost)

	got, ok := Find(c, path, profile, Options{})

	require.True(t, ok)
	travel, _ := profile.TravelTime(30)
	assert.InDelta(t, travel.Elapsed.Seconds(), got.Time.Sub(start).Seconds(), 0.05)
	assert.Equal(t, time.Duration(0), got.Spare)
	assert.Equal(t, 0.0, got.BoostNeeded)
}

func TestFind_BallRunningAway(t *testing.T) {
	c := car(vmath.Vector3{}, 0)
	ball := core.BallState{BodyState: core.BodyState{
		Position: vmath.V3(0, 20, physics.BallRadius), Velocity: vmath.V3(0, 40, 0), Time: start,
	}}
	path := physics.Simulate(ball, 2*time.Second, physics.DefaultStep)
	profile := carpredict.SimulateAcceleration(c, 2*time.Second, carpredict.NoBoost)

	_, ok := Find(c, path, profile, Options{})
	assert.False(t, ok, "throttle alone never catches it")
}

func TestFind_AcceptFiltersSlices(t *testing.T) {
	c := car(vmath.Vector3{}, 10)
	path := rollingBall(vmath.V3(0, 20, physics.BallRadius), vmath.V3(0, -5, 0))
	profile := carpredict.SimulateAcceleration(c, 4*time.Second, carpredict.FullBoost)

	first, ok := Find(c, path, profile, Options{})
	require.True(t, ok)

	notBefore := first.Time.PlusSeconds(0.5)
	later, ok := Find(c, path, profile, Options{
		Accept: func(_ core.CarState, _ vmath.Vector3, at core.GameTime) bool { return !at.Before(notBefore) },
	})
	require.True(t, ok)
	assert.False(t, later.Time.Before(notBefore))
	assert.Greater(t, later.Spare, 400*time.Millisecond)
}

func TestFind_ModifierShiftsTarget(t *testing.T) {
	c := car(vmath.Vector3{}, 0)
	path := rollingBall(vmath.V3(0, 30, physics.BallRadius), vmath.Vector3{})
	profile := carpredict.SimulateAcceleration(c, 4*time.Second, carpredict.NoBoost)

	got, ok := Find(c, path, profile, Options{Modifier: vmath.V3(0, -3, 0)})

	require.True(t, ok)
	assert.InDelta(t, 27, got.Position.Y, 0.5)
}
