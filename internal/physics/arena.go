package physics

import (
	"math"

	"github.com/strikerbot/planner/internal/vmath"
)

// Arena dimensions in field units, one unit being 50 host units. The arena is
// centered on the origin, goals sit at ±GoalLineY.
const (
	Gravity = -13.0

	BallRadius          = 1.8555
	BallDrag            = 0.03
	BallMaxSpeed        = 120.0
	BallMaxAngularSpeed = 6.0

	Restitution         = 0.6
	TangentialRetention = 0.92

	SideWallX     = 81.92
	GoalLineY     = 102.4
	GoalBackY     = 119.9
	GoalHalfWidth = 17.8555
	GoalHeight    = 12.8555
	CeilingZ      = 40.88

	// Normal speeds below this stop bouncing and settle into rolling contact.
	restingSpeed = 2.0
)

// surface is an axis-aligned contact plane.
type surface struct {
	normal vmath.Vector3
	// depth is the signed penetration of a ball centre at p, positive when inside the surface.
	depth func(p vmath.Vector3) float64
}

// InGoalMouth reports whether p lies within the opening of either goal.
func InGoalMouth(p vmath.Vector3) bool {
	return math.Abs(p.X) < GoalHalfWidth-BallRadius && p.Z < GoalHeight-BallRadius
}

// InGoalBox reports whether p is behind a goal line.
func InGoalBox(p vmath.Vector3) bool {
	return math.Abs(p.Y) > GoalLineY
}

// ClampToArena moves a ball centre back inside the playable volume. Positions
// inside a goal box stay in the goal box.
func ClampToArena(p vmath.Vector3) vmath.Vector3 {
	p.Z = vmath.Clamp(p.Z, BallRadius, CeilingZ-BallRadius)
	if InGoalBox(p) || math.Abs(p.Y) > GoalLineY-BallRadius && InGoalMouth(p) {
		p.X = vmath.Clamp(p.X, -(GoalHalfWidth - BallRadius), GoalHalfWidth-BallRadius)
		p.Y = vmath.Clamp(p.Y, -(GoalBackY - BallRadius), GoalBackY-BallRadius)
		p.Z = math.Min(p.Z, GoalHeight-BallRadius)
		return p
	}
	p.X = vmath.Clamp(p.X, -(SideWallX - BallRadius), SideWallX-BallRadius)
	p.Y = vmath.Clamp(p.Y, -(GoalLineY - BallRadius), GoalLineY-BallRadius)
	return p
}

// contacts lists the surfaces the ball at p is pressing into.
func contacts(p vmath.Vector3) []surface {
	var out []surface

	if p.Z < BallRadius {
		out = append(out, surface{normal: vmath.Up, depth: func(q vmath.Vector3) float64 { return BallRadius - q.Z }})
	}

	inGoal := InGoalBox(p) || InGoalMouth(p)
	roof := CeilingZ
	if InGoalBox(p) {
		roof = GoalHeight
	}
	if p.Z > roof-BallRadius {
		out = append(out, surface{normal: vmath.V3(0, 0, -1), depth: func(q vmath.Vector3) float64 { return q.Z - (roof - BallRadius) }})
	}

	wallX := SideWallX
	if InGoalBox(p) {
		wallX = GoalHalfWidth
	}
	if math.Abs(p.X) > wallX-BallRadius {
		s := vmath.Signum(p.X)
		out = append(out, surface{normal: vmath.V3(-s, 0, 0), depth: func(q vmath.Vector3) float64 { return s*q.X - (wallX - BallRadius) }})
	}

	backY := GoalLineY
	if inGoal {
		backY = GoalBackY
	}
	if math.Abs(p.Y) > backY-BallRadius {
		s := vmath.Signum(p.Y)
		out = append(out, surface{normal: vmath.V3(0, -s, 0), depth: func(q vmath.Vector3) float64 { return s*q.Y - (backY - BallRadius) }})
	}
	return out
}
