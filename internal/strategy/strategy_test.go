package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// snapshot puts the blue car at carY and the ball at ballY moving along Y.
func snapshot(carY, ballY, ballVelY float64) *core.Snapshot {
	return &core.Snapshot{
		Team: core.TeamBlue,
		Cars: []core.CarState{{
			BodyState:   core.BodyState{Position: vmath.V3(0, carY, 0)},
			Orientation: core.DefaultOrientation,
			Team:        core.TeamBlue,
		}},
		Ball: core.BallState{BodyState: core.BodyState{
			Position: vmath.V3(0, ballY, 0),
			Velocity: vmath.V3(0, ballVelY, 0),
		}},
	}
}

func TestNeedDefense_Boundaries(t *testing.T) {
	goalY := planning.OwnGoal(core.TeamBlue).NavigationSpline.Location.Y

	tests := []struct {
		name    string
		in      *core.Snapshot
		closing float64
		wrong   float64
		want    bool
	}{
		{"already on defense", snapshot(goalY+5, goalY+2, -60), 60, 3, false},
		{"fast and barely wrong side", snapshot(0, -5, -40), 40, 5, true},
		{"slow but deep on wrong side", snapshot(0, -20, -15), 15, 20, true},
		{"moderate and barely wrong side", snapshot(0, -5, -20), 20, 5, false},
		{"ball moving away", snapshot(0, -20, 40), -40, 20, false},
		{"car goal side", snapshot(-50, 0, -40), 40, -50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.closing, BallSpeedTowardGoal(tt.in), 1e-9)
			assert.InDelta(t, tt.wrong, WrongSidedness(tt.in), 1e-9)
			assert.Equal(t, tt.want, NeedDefense(tt.in))
		})
	}
}

func TestNeedDefense_AlreadyOnDefenseIgnoresBall(t *testing.T) {
	goalY := planning.OwnGoal(core.TeamBlue).NavigationSpline.Location.Y

	for _, ballY := range []float64{-90, -50, 0, 50} {
		for _, v := range []float64{-100, -30, 0, 30} {
			assert.False(t, NeedDefense(snapshot(goalY+5, ballY, v)))
		}
	}
}

func TestNeedDefense_OrangeIsMirrored(t *testing.T) {
	in := snapshot(0, 20, 15)
	in.Team = core.TeamOrange
	in.Cars[0].Team = core.TeamOrange

	assert.InDelta(t, 20, WrongSidedness(in), 1e-9)
	assert.True(t, NeedDefense(in))
}

func TestNeedDefense_NoCar(t *testing.T) {
	in := snapshot(0, -20, -15)
	in.PlayerIndex = 9
	assert.False(t, NeedDefense(in))
}

func TestKickAtEnemyGoal(t *testing.T) {
	var k KickStrategy = KickAtEnemyGoal{}

	// Car straight behind the ball: easy kick already on target.
	in := snapshot(0, 40, 0)
	in.Ball.Position = vmath.V3(0, 60, 2)
	dir := k.KickDirection(in)
	assert.InDelta(t, 0, vmath.Angle(dir.Flatten(), vmath.V2(0, 1)), 1e-6)

	// Easy kick far wide: corrected onto the near post.
	wide := k.KickDirectionWithEasyKick(in, in.Ball.Position, vmath.V3(1, 0.2, 0))
	right := planning.EnemyGoal(core.TeamBlue).RightPost(postPadding).Sub(in.Ball.Position).Flatten()
	assert.InDelta(t, 0, vmath.Angle(wide.Flatten(), right), 1e-9)
	assert.Equal(t, 0.0, wide.Z)

	assert.True(t, k.LooksViable(in.Cars[0], in.Ball.Position))
	assert.False(t, k.LooksViable(in.Cars[0], vmath.V3(80, 100, 0)))
}

func TestKickAwayFromOwnGoal(t *testing.T) {
	var k KickStrategy = KickAwayFromOwnGoal{}
	in := snapshot(-40, -60, 0)

	// Straight at our goal: pushed outside the post.
	dir := k.KickDirectionWithEasyKick(in, in.Ball.Position, vmath.V3(0, -1, 0))
	assert.Greater(t, math.Abs(dir.X), 0.5*math.Abs(dir.Y))

	// Already safe: untouched.
	safe := vmath.V3(1, 0.3, 0)
	assert.Equal(t, safe, k.KickDirectionWithEasyKick(in, in.Ball.Position, safe))

	// Behind the goal line: clears out of the goal.
	behind := k.KickDirectionAt(in, vmath.V3(5, -110, 2))
	assert.Greater(t, behind.Y, 0.0)

	assert.True(t, k.LooksViable(core.CarState{}, vmath.Vector3{}))
}
