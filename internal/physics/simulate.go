package physics

import (
	"time"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// DefaultStep is the integration step used when none is given.
const DefaultStep = time.Second / 60

// Simulate integrates the ball forward by horizon in fixed steps and returns
// one slice per step, starting with the (clamped) input state. A zero or
// negative horizon yields a single-slice path.
func Simulate(ball core.BallState, horizon, step time.Duration) *BallPath {
	if step <= 0 {
		step = DefaultStep
	}
	horizon = max(horizon, 0)

	state := ball.BodyState
	state.Position = ClampToArena(state.Position)

	steps := int(horizon / step)
	slices := make([]Slice, 0, steps+1)
	slices = append(slices, Slice{BodyState: state})

	dt := step.Seconds()
	for i := 0; i < steps; i++ {
		state = advance(state, dt)
		state.Time = state.Time.Plus(step)
		slices = append(slices, Slice{BodyState: state})
	}
	return &BallPath{slices: slices}
}

func advance(s core.BodyState, dt float64) core.BodyState {
	v := s.Velocity
	v.Z += Gravity * dt
	v = v.Scaled(1 - BallDrag*dt)
	if v.Magnitude() > BallMaxSpeed {
		v = v.ScaledToMagnitude(BallMaxSpeed)
	}

	p := s.Position.Add(v.Scaled(dt))
	spin := s.Spin

	for _, c := range contacts(p) {
		p = p.Add(c.normal.Scaled(c.depth(p)))
		v, spin = bounce(v, spin, c.normal)
	}

	return core.BodyState{Position: p, Velocity: v, Spin: spin, Time: s.Time}
}

// bounce reflects the normal component of v scaled by restitution, keeps part
// of the tangential component and sets the spin to rolling spin.
func bounce(v, spin, n vmath.Vector3) (vmath.Vector3, vmath.Vector3) {
	into := v.Dot(n)
	if into >= 0 {
		return v, spin
	}

	normal := n.Scaled(into)
	tangential := v.Sub(normal)

	if -into < restingSpeed {
		return tangential, rollingSpin(tangential, n)
	}

	tangential = tangential.Scaled(TangentialRetention)
	return tangential.Sub(normal.Scaled(Restitution)), rollingSpin(tangential, n)
}

func rollingSpin(tangential, n vmath.Vector3) vmath.Vector3 {
	spin := n.Cross(tangential).Scaled(1 / BallRadius)
	if spin.Magnitude() > BallMaxAngularSpeed {
		spin = spin.ScaledToMagnitude(BallMaxAngularSpeed)
	}
	return spin
}
