package carpredict

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

func carWith(speed, boost float64) core.CarState {
	return core.CarState{
		BodyState:       core.BodyState{Velocity: vmath.V3(0, speed, 0)},
		Orientation:     core.DefaultOrientation,
		Boost:           boost,
		HasWheelContact: true,
	}
}

func TestSimulateAcceleration_Monotonic(t *testing.T) {
	assumptions := []Assumption{NoBoost, FullBoost, {FlipCutoffDistance: 200}}
	cars := []core.CarState{carWith(0, 0), carWith(0, 100), carWith(20, 30), carWith(-15, 50), carWith(45, 0)}

	for _, a := range assumptions {
		for _, car := range cars {
			samples := SimulateAcceleration(car, 4*time.Second, a).Samples()
			require.Len(t, samples, 241)
			for i := 1; i < len(samples); i++ {
				assert.Greater(t, samples[i].Elapsed, samples[i-1].Elapsed)
				assert.GreaterOrEqual(t, samples[i].Distance, samples[i-1].Distance)
				assert.LessOrEqual(t, samples[i].Speed, physics.CarMaxSpeed)
			}
		}
	}
}

func TestSimulateAcceleration_ZeroVelocity(t *testing.T) {
	p := SimulateAcceleration(carWith(0, 0), time.Second, NoBoost)

	start := p.StartPoint()
	assert.Equal(t, 0.0, start.Distance)
	assert.Equal(t, 0.0, start.Speed)
	assert.Greater(t, p.EndPoint().Distance, 5.0)
	assert.False(t, math.IsNaN(p.EndPoint().Distance))
}

func TestSimulateAcceleration_ZeroHorizon(t *testing.T) {
	p := SimulateAcceleration(carWith(10, 0), 0, NoBoost)
	assert.Len(t, p.Samples(), 1)
}

func TestSimulateAcceleration_NegativeHorizon(t *testing.T) {
	p := SimulateAcceleration(carWith(10, 0), -2*time.Second, NoBoost)
	require.Len(t, p.Samples(), 1)
	assert.Zero(t, p.StartPoint().Distance)
}

func TestSimulateAcceleration_BoostIsFaster(t *testing.T) {
	car := carWith(10, 100)

	noBoost := SimulateAcceleration(car, 3*time.Second, NoBoost)
	boosted := SimulateAcceleration(car, 3*time.Second, FullBoost)

	assert.Greater(t, boosted.EndPoint().Distance, noBoost.EndPoint().Distance)
	assert.NotEqual(t, noBoost.Samples(), boosted.Samples())

	// Throttle alone tops out around coasting speed.
	assert.InDelta(t, physics.ThrottleCoastSpeed, noBoost.EndPoint().Speed, 1.0)
}

func TestSimulateAcceleration_BudgetCapsBoost(t *testing.T) {
	car := carWith(0, 100)

	small := SimulateAcceleration(car, 3*time.Second, Assumption{BoostBudget: 10})
	full := SimulateAcceleration(car, 3*time.Second, FullBoost)

	assert.Less(t, small.EndPoint().Distance, full.EndPoint().Distance)
}

func TestSimulateAcceleration_FlipsWhenAllowed(t *testing.T) {
	car := carWith(20, 0)

	plain := SimulateAcceleration(car, 3*time.Second, NoBoost)
	flipping := SimulateAcceleration(car, 3*time.Second, Assumption{FlipCutoffDistance: 500})
	tooShort := SimulateAcceleration(car, 3*time.Second, Assumption{FlipCutoffDistance: 10})

	assert.Greater(t, flipping.EndPoint().Distance, plain.EndPoint().Distance)
	assert.Equal(t, plain.Samples(), tooShort.Samples(), "cutoff shorter than any flip")
}

func TestSimulateAcceleration_ReversingCarBrakesFirst(t *testing.T) {
	p := SimulateAcceleration(carWith(-20, 0), time.Second, NoBoost)

	samples := p.Samples()
	assert.Equal(t, 0.0, samples[1].Distance)
	assert.Greater(t, p.EndPoint().Distance, 0.0)
}

func TestThrottleAcceleration(t *testing.T) {
	assert.Equal(t, 32.0, physics.ThrottleAcceleration(0))
	assert.InDelta(t, 3.2, physics.ThrottleAcceleration(28), 1e-9)
	assert.InDelta(t, 17.6, physics.ThrottleAcceleration(14), 1e-9)
	assert.Equal(t, 0.0, physics.ThrottleAcceleration(30))
}
