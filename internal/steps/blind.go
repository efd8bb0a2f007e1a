// Package steps holds the general-purpose behaviour steps and the canned
// manoeuvres built from them.
package steps

import (
	"fmt"
	"time"

	"github.com/strikerbot/planner/pkg/core"
)

// BlindStep holds a fixed output for a fixed duration without looking at the
// world. The clock starts on the first Output call. Once the duration has
// passed the step stays complete.
type BlindStep struct {
	output   core.ControlOutput
	duration time.Duration

	end  *core.GameTime
	done bool
}

// NewBlindStep creates a step emitting output for duration.
func NewBlindStep(duration time.Duration, output core.ControlOutput) *BlindStep {
	return &BlindStep{output: output, duration: duration}
}

func (s *BlindStep) Begin() {}

// Output returns the stored output until the current time passes the end time.
func (s *BlindStep) Output(in *core.Snapshot) (core.ControlOutput, bool) {
	if s.done {
		return core.ControlOutput{}, false
	}
	if s.end == nil {
		end := in.Time.Plus(s.duration)
		s.end = &end
	}
	if in.Time.After(*s.end) {
		s.done = true
		return core.ControlOutput{}, false
	}
	return s.output, true
}

// CanInterrupt is false: a half-finished manoeuvre leaves the car in a bad spot.
func (s *BlindStep) CanInterrupt() bool { return false }

func (s *BlindStep) BlindlyComplete() bool { return false }

func (s *BlindStep) Situation() string {
	return fmt.Sprintf("Blind for %s", s.duration)
}
