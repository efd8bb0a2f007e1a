// Package reach answers "how soon can the car cover this distance" from a
// simulated acceleration profile.
package reach

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/strikerbot/planner/pkg/core"
)

var (
	// ErrNonMonotonic is returned when samples go back in time or distance.
	ErrNonMonotonic = errors.New("profile samples not monotonic")
	// ErrEmptyProfile is returned for a profile with no samples.
	ErrEmptyProfile = errors.New("profile has no samples")
)

// stoppedSpeed is the speed below which the car is treated as not moving.
const stoppedSpeed = 1e-6

// Sample is the car's cumulative forward travel at an elapsed time.
type Sample struct {
	Elapsed  time.Duration `json:"elapsed"`
	Distance float64       `json:"distance"`
	Speed    float64       `json:"speed"`
}

// Estimate is the answer to a reach query. Extrapolated is set when the
// query went past the simulated horizon and the answer assumes the final
// speed holds.
type Estimate struct {
	Elapsed      time.Duration
	Distance     float64
	Speed        float64
	Extrapolated bool
}

// Profile is a sequence of samples increasing in elapsed time with
// non-decreasing distance.
type Profile struct {
	samples []Sample
}

// NewProfile validates and wraps samples.
func NewProfile(samples []Sample) (*Profile, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyProfile
	}
	for i, s := range samples {
		if !finite(s.Distance) || !finite(s.Speed) {
			return nil, fmt.Errorf("%w: sample %d is not finite", ErrNonMonotonic, i)
		}
	}
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if cur.Elapsed <= prev.Elapsed {
			return nil, fmt.Errorf("%w: sample %d elapsed %s after %s", ErrNonMonotonic, i, cur.Elapsed, prev.Elapsed)
		}
		if cur.Distance < prev.Distance {
			return nil, fmt.Errorf("%w: sample %d distance %.3f after %.3f", ErrNonMonotonic, i, cur.Distance, prev.Distance)
		}
	}
	return &Profile{samples: append([]Sample(nil), samples...)}, nil
}

// Samples returns a copy of the samples.
func (p *Profile) Samples() []Sample { return append([]Sample(nil), p.samples...) }

// StartPoint is the first sample.
func (p *Profile) StartPoint() Sample { return p.samples[0] }

// EndPoint is the last sample.
func (p *Profile) EndPoint() Sample { return p.samples[len(p.samples)-1] }

// TravelTime returns the earliest elapsed time at which distance is covered.
// A non-positive distance is reached immediately. Past the horizon the final
// speed is extrapolated; ok is false if the car has stopped by then.
func (p *Profile) TravelTime(distance float64) (Estimate, bool) {
	start := p.StartPoint()
	if distance <= 0 {
		return Estimate{Speed: start.Speed}, true
	}

	i := sort.Search(len(p.samples), func(i int) bool { return p.samples[i].Distance >= distance })
	if i < len(p.samples) {
		if i == 0 {
			return Estimate{Elapsed: start.Elapsed, Distance: distance, Speed: start.Speed}, true
		}
		lo, hi := p.samples[i-1], p.samples[i]
		f := (distance - lo.Distance) / (hi.Distance - lo.Distance)
		return Estimate{
			Elapsed:  lo.Elapsed + time.Duration(f*float64(hi.Elapsed-lo.Elapsed)),
			Distance: distance,
			Speed:    lerp(lo.Speed, hi.Speed, f),
		}, true
	}

	end := p.EndPoint()
	if end.Speed < stoppedSpeed {
		return Estimate{}, false
	}
	extra := (distance - end.Distance) / end.Speed
	return Estimate{
		Elapsed:      end.Elapsed + core.DurationOf(extra),
		Distance:     distance,
		Speed:        end.Speed,
		Extrapolated: true,
	}, true
}

// DistanceAt returns the distance covered after elapsed. Past the horizon the
// final speed is extrapolated. Negative elapsed has no answer.
func (p *Profile) DistanceAt(elapsed time.Duration) (Estimate, bool) {
	if elapsed < 0 {
		return Estimate{}, false
	}
	start, end := p.StartPoint(), p.EndPoint()
	if elapsed <= start.Elapsed {
		return Estimate{Elapsed: elapsed, Distance: start.Distance, Speed: start.Speed}, true
	}
	if elapsed > end.Elapsed {
		extra := (elapsed - end.Elapsed).Seconds()
		return Estimate{
			Elapsed:      elapsed,
			Distance:     end.Distance + end.Speed*extra,
			Speed:        end.Speed,
			Extrapolated: true,
		}, true
	}

	i := sort.Search(len(p.samples), func(i int) bool { return p.samples[i].Elapsed >= elapsed })
	hi := p.samples[i]
	if hi.Elapsed == elapsed {
		return Estimate{Elapsed: elapsed, Distance: hi.Distance, Speed: hi.Speed}, true
	}
	lo := p.samples[i-1]
	f := float64(elapsed-lo.Elapsed) / float64(hi.Elapsed-lo.Elapsed)
	return Estimate{
		Elapsed:  elapsed,
		Distance: lerp(lo.Distance, hi.Distance, f),
		Speed:    lerp(lo.Speed, hi.Speed, f),
	}, true
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
