// pkg/core/snapshot.go
package core

// Touch records the most recent contact with the ball.
type Touch struct {
	PlayerIndex int      `json:"playerIndex"`
	Team        Team     `json:"team"`
	Time        GameTime `json:"time"`
}

// Snapshot is the decoded world state for one tick.
type Snapshot struct {
	Time        GameTime   `json:"time"`
	FrameCount  uint       `json:"frameCount"`
	PlayerIndex int        `json:"playerIndex"`
	Team        Team       `json:"team"`
	Cars        []CarState `json:"cars"`
	Ball        BallState  `json:"ball"`
	LatestTouch *Touch     `json:"latestTouch,omitempty"`
}

// MyCar returns the car this planner controls. ok is false when the player
// index does not resolve to a car in the snapshot.
func (s *Snapshot) MyCar() (CarState, bool) {
	for _, c := range s.Cars {
		if c.PlayerIndex == s.PlayerIndex {
			return c, true
		}
	}
	return CarState{}, false
}

// Opponents returns the cars on the other team.
func (s *Snapshot) Opponents() []CarState {
	var out []CarState
	for _, c := range s.Cars {
		if c.Team != s.Team {
			out = append(out, c)
		}
	}
	return out
}
