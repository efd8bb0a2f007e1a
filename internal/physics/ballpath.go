package physics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

var (
	// ErrNonMonotonic is returned when path slices are not strictly increasing in time.
	ErrNonMonotonic = errors.New("slices not strictly increasing in time")
	// ErrEmptyPath is returned when a path would have no slices.
	ErrEmptyPath = errors.New("path has no slices")
)

// Slice is one sample of a body's trajectory. Its Time is the instant it describes.
type Slice struct {
	core.BodyState
}

// Ball returns the slice as a ball state.
func (s Slice) Ball() core.BallState { return core.BallState{BodyState: s.BodyState} }

// BallPath is a trajectory: slices strictly increasing in time.
type BallPath struct {
	slices []Slice
}

// NewBallPath validates ordering and wraps slices. The slice is copied.
func NewBallPath(slices []Slice) (*BallPath, error) {
	if len(slices) == 0 {
		return nil, ErrEmptyPath
	}
	for i := 1; i < len(slices); i++ {
		if !slices[i].Time.After(slices[i-1].Time) {
			return nil, fmt.Errorf("%w: slice %d at %s follows %s", ErrNonMonotonic, i, slices[i].Time, slices[i-1].Time)
		}
	}
	return &BallPath{slices: append([]Slice(nil), slices...)}, nil
}

// Len returns the number of slices.
func (p *BallPath) Len() int { return len(p.slices) }

// Slices returns a copy of all slices.
func (p *BallPath) Slices() []Slice { return append([]Slice(nil), p.slices...) }

// StartPoint is the earliest slice.
func (p *BallPath) StartPoint() Slice { return p.slices[0] }

// EndPoint is the latest slice.
func (p *BallPath) EndPoint() Slice { return p.slices[len(p.slices)-1] }

// Horizon is the span covered by the path.
func (p *BallPath) Horizon() time.Duration { return p.EndPoint().Time.Sub(p.StartPoint().Time) }

// MotionAt interpolates the ball state at t. ok is false when t lies outside
// the path.
func (p *BallPath) MotionAt(t core.GameTime) (Slice, bool) {
	if t.Before(p.StartPoint().Time) || t.After(p.EndPoint().Time) {
		return Slice{}, false
	}

	// first slice at or after t
	i := sort.Search(len(p.slices), func(i int) bool { return !p.slices[i].Time.Before(t) })
	if p.slices[i].Time.Equal(t) {
		return p.slices[i], true
	}

	prev, next := p.slices[i-1], p.slices[i]
	f := float64(t-prev.Time) / float64(next.Time-prev.Time)
	return Slice{BodyState: core.BodyState{
		Position: vmath.Lerp(prev.Position, next.Position, f),
		Velocity: vmath.Lerp(prev.Velocity, next.Velocity, f),
		Spin:     vmath.Lerp(prev.Spin, next.Spin, f),
		Time:     t,
	}}, true
}

// SlicesAfter returns the slices strictly later than t.
func (p *BallPath) SlicesAfter(t core.GameTime) []Slice {
	i := sort.Search(len(p.slices), func(i int) bool { return p.slices[i].Time.After(t) })
	return append([]Slice(nil), p.slices[i:]...)
}

// Landing finds the first floor bounce after t: a slice near the floor where
// the vertical velocity flips from falling to rising.
func (p *BallPath) Landing(after core.GameTime) (Slice, bool) {
	for i := 1; i < len(p.slices); i++ {
		prev, cur := p.slices[i-1], p.slices[i]
		if !cur.Time.After(after) {
			continue
		}
		if prev.Velocity.Z < 0 && cur.Velocity.Z >= 0 && cur.Position.Z < BallRadius+1 {
			return cur, true
		}
	}
	return Slice{}, false
}

// GoalEntry returns the first slice where the ball has fully crossed the goal
// line on the given side (-1 for negative Y, 1 for positive Y).
func (p *BallPath) GoalEntry(side float64) (Slice, bool) {
	for _, s := range p.slices {
		if s.Position.Y*side > GoalLineY+BallRadius {
			return s, true
		}
	}
	return Slice{}, false
}
