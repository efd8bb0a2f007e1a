package cache

import (
	"sync"
	"time"

	"github.com/strikerbot/planner/internal/carpredict"
	"github.com/strikerbot/planner/internal/reach"
	"github.com/strikerbot/planner/pkg/core"
)

// ProfileCache memoizes the controlled car's reach profiles for one tick.
// Steps may ask for the same assumption many times per tick; simulating once
// keeps the tick inside its budget. The cache empties itself when asked about
// a different tick.
type ProfileCache struct {
	mu       sync.RWMutex
	tick     core.GameTime
	horizon  time.Duration
	profiles map[carpredict.Assumption]*reach.Profile

	Hits   SafeCounter
	Misses SafeCounter
}

// NewProfileCache creates a cache simulating profiles out to horizon.
func NewProfileCache(horizon time.Duration) *ProfileCache {
	return &ProfileCache{
		horizon:  horizon,
		profiles: make(map[carpredict.Assumption]*reach.Profile),
	}
}

// Get returns the car's profile under a for the car's tick, simulating it on
// first use.
func (c *ProfileCache) Get(car core.CarState, a carpredict.Assumption) *reach.Profile {
	c.mu.RLock()
	if car.Time.Equal(c.tick) {
		if p, ok := c.profiles[a]; ok {
			c.mu.RUnlock()
			c.Hits.Inc()
			return p
		}
	}
	c.mu.RUnlock()

	c.Misses.Inc()
	p := carpredict.SimulateAcceleration(car, c.horizon, a)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !car.Time.Equal(c.tick) {
		c.tick = car.Time
		c.profiles = make(map[carpredict.Assumption]*reach.Profile)
	}
	c.profiles[a] = p
	return p
}

// Len returns the number of profiles held for the current tick.
func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.profiles)
}

// Reset drops every profile.
func (c *ProfileCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = make(map[carpredict.Assumption]*reach.Profile)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
