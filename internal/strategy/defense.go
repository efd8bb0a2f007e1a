package strategy

import (
	"math"

	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// Thresholds for NeedDefense.
const (
	alreadyOnDefenseDistance = 10.0

	fastClosingSpeed  = 30.0
	slowClosingSpeed  = 10.0
	deepWrongSideness = 10.0
)

// WrongSidedness measures how far the car is on the wrong side of the ball,
// along the goal axis. Positive means the ball is closer to our goal than
// the car is.
func WrongSidedness(in *core.Snapshot) float64 {
	car, ok := in.MyCar()
	if !ok {
		return 0
	}
	goal := planning.OwnGoal(in.Team).NavigationSpline.Location
	return (in.Ball.Position.Y - car.Position.Y) * vmath.Signum(goal.Y)
}

// BallSpeedTowardGoal is the signed speed of the ball along the line to our
// goal. Negative when it is moving away.
func BallSpeedTowardGoal(in *core.Snapshot) float64 {
	goal := planning.OwnGoal(in.Team).NavigationSpline.Location
	ballToGoal := goal.Sub(in.Ball.Position)
	toward := in.Ball.Velocity.Project(ballToGoal)
	return toward.Magnitude() * vmath.Signum(toward.Dot(ballToGoal))
}

// NeedDefense reports whether the car should abandon what it is doing and
// get back to goal: the ball is heading for our goal and the car is on the
// wrong side of it. A car already near its goal line never needs to.
func NeedDefense(in *core.Snapshot) bool {
	car, ok := in.MyCar()
	if !ok {
		return false
	}

	goal := planning.OwnGoal(in.Team).NavigationSpline.Location
	if math.Abs(goal.Y-car.Position.Y) < alreadyOnDefenseDistance {
		return false
	}

	closing := BallSpeedTowardGoal(in)
	wrong := WrongSidedness(in)
	return closing > fastClosingSpeed && wrong > 0 ||
		closing > slowClosingSpeed && wrong > deepWrongSideness
}
