// Package planning holds the field knowledge and steering helpers shared by
// steps: goals, zones, ground steering and flip decisions.
package planning

import (
	"math"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// SplineHandle is a navigation target with two approach handles either side
// of it along facing.
type SplineHandle struct {
	Location     vmath.Vector3
	Facing       vmath.Vector3
	HandleLength float64
}

// Handles returns both approach points.
func (s SplineHandle) Handles() (vmath.Vector3, vmath.Vector3) {
	offset := s.Facing.ScaledToMagnitude(s.HandleLength)
	return s.Location.Add(offset), s.Location.Sub(offset)
}

// IsWithinHandleRange reports whether p is closer to the location than a
// handle is.
func (s SplineHandle) IsWithinHandleRange(p vmath.Vector3) bool {
	return s.Location.FlatDistance(p) < s.HandleLength
}

// FarthestHandle returns the handle farther from p on the ground plane.
func (s SplineHandle) FarthestHandle(p vmath.Vector3) vmath.Vector3 {
	a, b := s.Handles()
	if a.FlatDistance(p) >= b.FlatDistance(p) {
		return a
	}
	return b
}

// Goal is one end of the field.
type Goal struct {
	Center vmath.Vector3
	// Side is -1 for the goal at negative Y, 1 otherwise.
	Side float64

	NavigationSpline SplineHandle
}

const (
	defenseLineOffset  = 5.0
	defenseHandleRange = 15.0
)

func newGoal(side float64) Goal {
	return Goal{
		Center: vmath.V3(0, side*physics.GoalLineY, 0),
		Side:   side,
		NavigationSpline: SplineHandle{
			Location:     vmath.V3(0, side*(physics.GoalLineY-defenseLineOffset), 0),
			Facing:       vmath.V3(1, 0, 0),
			HandleLength: defenseHandleRange,
		},
	}
}

var (
	blueGoal   = newGoal(-1)
	orangeGoal = newGoal(1)
)

// OwnGoal is the goal team defends.
func OwnGoal(team core.Team) Goal {
	if team == core.TeamBlue {
		return blueGoal
	}
	return orangeGoal
}

// EnemyGoal is the goal team attacks.
func EnemyGoal(team core.Team) Goal {
	return OwnGoal(team.Opponent())
}

// LeftPost is the post on the left as seen from the field, pulled inward by
// padding. "Left" looks at the goal from midfield.
func (g Goal) LeftPost(padding float64) vmath.Vector3 {
	return vmath.V3(-g.Side*(physics.GoalHalfWidth-padding), g.Center.Y, 0)
}

// RightPost mirrors LeftPost.
func (g Goal) RightPost(padding float64) vmath.Vector3 {
	return vmath.V3(g.Side*(physics.GoalHalfWidth-padding), g.Center.Y, 0)
}

// GenerousShotAngle reports whether the goal mouth is open enough from
// kickPosition to be worth shooting at.
func GenerousShotAngle(g Goal, kickPosition vmath.Vector2) bool {
	toGoal := g.Center.Flatten().Sub(kickPosition)
	if toGoal.IsZero() {
		return true
	}
	return vmath.Angle(vmath.V2(0, g.Side), toGoal) < math.Pi/3
}
