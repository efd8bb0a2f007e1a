// pkg/core/state.go
package core

import "github.com/strikerbot/planner/internal/vmath"

// Team identifies a side of the pitch. Blue defends negative Y.
type Team int

const (
	TeamBlue   Team = 0
	TeamOrange Team = 1
)

// Side returns -1 for blue and 1 for orange. Multiplying by it maps a Y
// coordinate into the team's own frame.
func (t Team) Side() float64 {
	if t == TeamBlue {
		return -1
	}
	return 1
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamOrange
	}
	return TeamBlue
}

func (t Team) String() string {
	if t == TeamBlue {
		return "blue"
	}
	return "orange"
}

// BodyState is the physical state of a rigid body at one instant.
type BodyState struct {
	Position vmath.Vector3 `json:"position"`
	Velocity vmath.Vector3 `json:"velocity"`
	Spin     vmath.Vector3 `json:"spin"`
	Time     GameTime      `json:"time"`
}

// Speed is the magnitude of the velocity.
func (b BodyState) Speed() float64 { return b.Velocity.Magnitude() }

// BallState is the ball's body state.
type BallState struct {
	BodyState
}

// Orientation holds the car's local axes in world space.
type Orientation struct {
	Nose vmath.Vector3 `json:"nose"`
	Roof vmath.Vector3 `json:"roof"`
}

// Right completes the basis.
func (o Orientation) Right() vmath.Vector3 { return o.Roof.Cross(o.Nose) }

// DefaultOrientation faces +Y with wheels down.
var DefaultOrientation = Orientation{
	Nose: vmath.V3(0, 1, 0),
	Roof: vmath.Up,
}

// CarState describes one car on the field.
type CarState struct {
	BodyState
	Orientation     Orientation `json:"orientation"`
	Boost           float64     `json:"boost"`
	Supersonic      bool        `json:"supersonic"`
	HasWheelContact bool        `json:"hasWheelContact"`
	Team            Team        `json:"team"`
	PlayerIndex     int         `json:"playerIndex"`
	Demolished      bool        `json:"demolished"`
	Name            string      `json:"name"`
}

// ForwardSpeed is the velocity component along the nose.
func (c CarState) ForwardSpeed() float64 {
	return c.Velocity.Dot(c.Orientation.Nose)
}

// IsUpright reports whether the roof is close to world up.
func (c CarState) IsUpright() bool {
	return c.Orientation.Roof.Dot(vmath.Up) > 0.98
}
