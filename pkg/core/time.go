// pkg/core/time.go
package core

import (
	"fmt"
	"math"
	"time"
)

// GameTime is an instant on the host's game clock. It counts nanoseconds from an
// arbitrary zero chosen by the host, so only differences and ordering are
// meaningful. Within one run the host clock never goes backwards.
type GameTime int64

// GameTimeFromSeconds converts the host's float seconds into a GameTime.
func GameTimeFromSeconds(seconds float64) GameTime {
	return GameTime(math.Round(seconds * float64(time.Second)))
}

// Before reports whether t is strictly earlier than o.
func (t GameTime) Before(o GameTime) bool { return t < o }

// After reports whether t is strictly later than o.
func (t GameTime) After(o GameTime) bool { return t > o }

// Equal reports whether both instants are the same.
func (t GameTime) Equal(o GameTime) bool { return t == o }

// Plus offsets t by d.
func (t GameTime) Plus(d time.Duration) GameTime { return t + GameTime(d) }

// PlusSeconds offsets t by a real-valued number of seconds.
func (t GameTime) PlusSeconds(s float64) GameTime {
	return t + GameTime(math.Round(s*float64(time.Second)))
}

// Sub returns the signed span t - o.
func (t GameTime) Sub(o GameTime) time.Duration { return time.Duration(t - o) }

// Seconds returns t as float seconds since the clock's zero.
func (t GameTime) Seconds() float64 { return float64(t) / float64(time.Second) }

func (t GameTime) String() string { return fmt.Sprintf("%.3fs", t.Seconds()) }

// DurationOf builds a span from real seconds. Negative input is clamped to zero
// since spans are never negative.
func DurationOf(seconds float64) time.Duration {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	if math.IsInf(seconds, 1) || seconds > float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
