package steps

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

func at(seconds float64) *core.Snapshot {
	return &core.Snapshot{Time: core.GameTimeFromSeconds(seconds)}
}

func TestBlindStep_FixedDuration(t *testing.T) {
	want := core.ControlOutput{Throttle: 1, Boost: true}
	s := NewBlindStep(2*time.Second, want)
	s.Begin()

	out, ok := s.Output(at(10))
	require.True(t, ok)
	assert.Equal(t, want, out)

	out, ok = s.Output(at(11))
	require.True(t, ok)
	assert.Equal(t, want, out)

	out, ok = s.Output(at(12))
	require.True(t, ok, "the end moment itself still emits")
	assert.Equal(t, want, out)

	_, ok = s.Output(at(12.1))
	assert.False(t, ok)

	for _, later := range []float64{12.1, 13, 11, 10} {
		_, ok = s.Output(at(later))
		assert.False(t, ok, "completion is permanent")
	}
}

func TestBlindStep_NotInterruptible(t *testing.T) {
	s := NewBlindStep(time.Second, core.ControlOutput{})
	assert.False(t, s.CanInterrupt())
	assert.False(t, s.BlindlyComplete())
	assert.Contains(t, s.Situation(), "1s")
}

func runPlan(t *testing.T, steps interface {
	Output(*core.Snapshot) (core.ControlOutput, bool)
}, start float64) (ticks int, outputs []core.ControlOutput) {
	t.Helper()
	for i := 0; i < 600; i++ {
		out, ok := steps.Output(at(start + float64(i)/60))
		if !ok {
			return i, outputs
		}
		outputs = append(outputs, out)
	}
	t.Fatal("plan never completed")
	return 0, nil
}

func TestFrontFlip(t *testing.T) {
	p := FrontFlip()
	p.Begin()
	assert.False(t, p.CanInterrupt())

	ticks, outputs := runPlan(t, p, 5)

	assert.Greater(t, ticks, 50)
	assert.Less(t, ticks, 70)
	assert.True(t, outputs[0].Jump)
	assert.True(t, p.IsComplete())

	var dodged bool
	for _, o := range outputs {
		if o.Jump && o.Pitch < 0 {
			dodged = true
		}
	}
	assert.True(t, dodged)
}

func TestHalfFlip(t *testing.T) {
	car := core.CarState{Orientation: core.DefaultOrientation}
	p := HalfFlip(car, vmath.V2(10, -60))

	_, outputs := runPlan(t, p, 0)

	require.NotEmpty(t, outputs)
	assert.Equal(t, -1.0, outputs[0].Throttle)
	var rolled bool
	for _, o := range outputs {
		if o.Roll != 0 {
			rolled = true
		}
	}
	assert.True(t, rolled)
}

func TestJumpHit(t *testing.T) {
	ticks, _ := runPlan(t, JumpHit(200*time.Millisecond), 0)
	assert.Greater(t, ticks, 50)
}

func TestLineUpInReverse(t *testing.T) {
	// Car at origin facing +Y, waypoint straight ahead: has to swing its tail round.
	snap := &core.Snapshot{
		Cars: []core.CarState{{Orientation: core.DefaultOrientation}},
	}
	s := NewLineUpInReverseStep(vmath.V2(0, 50))

	out, ok := s.Output(snap)
	require.True(t, ok)
	assert.Equal(t, -1.0, out.Throttle)
	assert.Equal(t, 1.0, math.Abs(out.Steer))

	// Now facing away from the waypoint.
	snap.Cars[0].Orientation = core.Orientation{Nose: vmath.V3(0.1*out.Steer, -1, 0).Normalized(), Roof: vmath.Up}
	_, ok = s.Output(snap)
	assert.False(t, ok)
	assert.True(t, s.CanInterrupt())
}

func TestLineUpInReverse_NoCar(t *testing.T) {
	_, ok := NewLineUpInReverseStep(vmath.V2(0, 0)).Output(&core.Snapshot{PlayerIndex: 3})
	assert.False(t, ok)
}
