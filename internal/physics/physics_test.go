package physics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

func ballAt(pos, vel vmath.Vector3) core.BallState {
	return core.BallState{BodyState: core.BodyState{Position: pos, Velocity: vel, Time: core.GameTimeFromSeconds(10)}}
}

func TestSimulate_ZeroHorizon(t *testing.T) {
	ball := ballAt(vmath.V3(1, 2, 5), vmath.V3(3, 0, 0))

	path := Simulate(ball, 0, DefaultStep)

	require.Equal(t, 1, path.Len())
	assert.Equal(t, ball.BodyState, path.StartPoint().BodyState)
}

func TestSimulate_NegativeHorizon(t *testing.T) {
	ball := ballAt(vmath.V3(1, 2, 5), vmath.V3(3, 0, 0))

	path := Simulate(ball, -time.Second, DefaultStep)

	require.Equal(t, 1, path.Len())
	assert.Equal(t, ball.BodyState, path.StartPoint().BodyState)
}

func TestSimulate_ClampsOutOfBounds(t *testing.T) {
	ball := ballAt(vmath.V3(500, 0, -10), vmath.Vector3{})

	start := Simulate(ball, 0, DefaultStep).StartPoint()

	assert.InDelta(t, SideWallX-BallRadius, start.Position.X, 1e-9)
	assert.InDelta(t, BallRadius, start.Position.Z, 1e-9)
}

func TestSimulate_StrictlyIncreasingTime(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(0, 0, 20), vmath.V3(10, 30, 5)), 3*time.Second, DefaultStep)

	slices := path.Slices()
	assert.Len(t, slices, 181)
	for i := 1; i < len(slices); i++ {
		assert.True(t, slices[i].Time.After(slices[i-1].Time))
	}
	_, err := NewBallPath(slices)
	assert.NoError(t, err)
}

func TestSimulate_StaysInArena(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(0, 0, 10), vmath.V3(90, 70, 30)), 5*time.Second, DefaultStep)

	for _, s := range path.Slices() {
		assert.LessOrEqual(t, math.Abs(s.Position.X), SideWallX+1e-9)
		assert.GreaterOrEqual(t, s.Position.Z, BallRadius-1e-9)
		assert.LessOrEqual(t, s.Position.Z, CeilingZ+1e-9)
		assert.True(t, s.Position.IsFinite())
	}
}

func TestSimulate_FloorBounceLosesEnergy(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(0, 0, 20), vmath.Vector3{}), 4*time.Second, DefaultStep)

	landing, ok := path.Landing(path.StartPoint().Time)
	require.True(t, ok)

	impact := math.Sqrt(2 * -Gravity * (20 - BallRadius))
	assert.Less(t, landing.Velocity.Z, impact*Restitution+0.5)
	assert.Greater(t, landing.Velocity.Z, 0.0)
}

func TestSimulate_RollingBallSettles(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(0, 0, BallRadius), vmath.V3(0, 10, 0)), 2*time.Second, DefaultStep)

	end := path.EndPoint()
	assert.InDelta(t, BallRadius, end.Position.Z, 1e-6)
	assert.Greater(t, end.Velocity.Y, 8.0, "rolling only loses drag")
	assert.InDelta(t, 10/BallRadius, end.Spin.Magnitude(), 1.0)
}

func TestSimulate_EntersGoal(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(0, 90, BallRadius), vmath.V3(0, 40, 0)), 2*time.Second, DefaultStep)

	entry, ok := path.GoalEntry(1)
	require.True(t, ok)
	assert.Greater(t, entry.Position.Y, GoalLineY)

	_, ok = path.GoalEntry(-1)
	assert.False(t, ok)
}

func TestSimulate_WallBounceReverses(t *testing.T) {
	path := Simulate(ballAt(vmath.V3(70, 0, BallRadius), vmath.V3(50, 0, 0)), time.Second, DefaultStep)

	assert.Less(t, path.EndPoint().Velocity.X, 0.0)
}

func TestNewBallPath_Validation(t *testing.T) {
	s := func(sec float64) Slice {
		return Slice{BodyState: core.BodyState{Time: core.GameTimeFromSeconds(sec)}}
	}

	_, err := NewBallPath(nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = NewBallPath([]Slice{s(1), s(1)})
	assert.ErrorIs(t, err, ErrNonMonotonic)

	_, err = NewBallPath([]Slice{s(2), s(1)})
	assert.ErrorIs(t, err, ErrNonMonotonic)

	p, err := NewBallPath([]Slice{s(1), s(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestBallPath_MotionAt(t *testing.T) {
	a := Slice{BodyState: core.BodyState{Position: vmath.V3(0, 0, 0), Time: core.GameTimeFromSeconds(1)}}
	b := Slice{BodyState: core.BodyState{Position: vmath.V3(10, 0, 0), Time: core.GameTimeFromSeconds(2)}}
	p, err := NewBallPath([]Slice{a, b})
	require.NoError(t, err)

	mid, ok := p.MotionAt(core.GameTimeFromSeconds(1.25))
	require.True(t, ok)
	assert.InDelta(t, 2.5, mid.Position.X, 1e-9)

	exact, ok := p.MotionAt(b.Time)
	require.True(t, ok)
	assert.Equal(t, b, exact)

	_, ok = p.MotionAt(core.GameTimeFromSeconds(0.5))
	assert.False(t, ok)
	_, ok = p.MotionAt(core.GameTimeFromSeconds(3))
	assert.False(t, ok)

	assert.Len(t, p.SlicesAfter(a.Time), 1)
}

func TestPredictor_RefreshOnlyWhenNeeded(t *testing.T) {
	pred := NewPredictor(DefaultPredictorConfig())
	ball := ballAt(vmath.V3(0, 0, 10), vmath.V3(5, 5, 0))

	path, refreshed := pred.Path(ball)
	require.True(t, refreshed)

	// Ball follows the prediction: reuse.
	later, ok := path.MotionAt(ball.Time.Plus(200 * time.Millisecond))
	require.True(t, ok)
	_, refreshed = pred.Path(later.Ball())
	assert.False(t, refreshed)

	// Ball got hit: resimulate.
	hit := later.Ball()
	hit.Velocity = vmath.V3(-40, 0, 20)
	_, refreshed = pred.Path(hit)
	assert.True(t, refreshed)

	// Path running short: resimulate.
	pred.Invalidate()
	_, refreshed = pred.Path(ball)
	require.True(t, refreshed)
	_, refreshed = pred.Path(func() core.BallState {
		s, _ := pred.path.MotionAt(ball.Time.Plus(4500 * time.Millisecond))
		return s.Ball()
	}())
	assert.True(t, refreshed)
}
