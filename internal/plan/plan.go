package plan

import (
	"strings"

	"github.com/strikerbot/planner/pkg/core"
)

// Plan is an ordered list of steps with a cursor on the active one.
type Plan struct {
	posture Posture
	steps   []Step
	cursor  int
	begun   bool
	// stepBegun tracks whether steps[cursor] has had Begin called.
	stepBegun bool
}

// New creates a plan of the given posture.
func New(posture Posture, steps ...Step) *Plan {
	return &Plan{posture: posture, steps: steps}
}

// WithStep appends a step and returns the plan for chaining.
func (p *Plan) WithStep(s Step) *Plan {
	p.steps = append(p.steps, s)
	return p
}

// Posture returns the plan's urgency.
func (p *Plan) Posture() Posture { return p.posture }

// Begin activates the first runnable step. Calling it again is a no-op.
func (p *Plan) Begin() {
	if p.begun {
		return
	}
	p.begun = true
	p.activate()
}

// activate moves the cursor past blindly complete steps and begins the step
// it lands on.
func (p *Plan) activate() {
	for p.cursor < len(p.steps) {
		s := p.steps[p.cursor]
		if s.BlindlyComplete() {
			p.cursor++
			continue
		}
		if !p.stepBegun {
			s.Begin()
			p.stepBegun = true
		}
		return
	}
}

// Output runs the active step. When it completes the next step begins and
// runs in the same tick, so chaining never costs a tick. ok is false once
// every step is done.
func (p *Plan) Output(in *core.Snapshot) (core.ControlOutput, bool) {
	p.Begin()

	for p.cursor < len(p.steps) {
		out, ok := p.steps[p.cursor].Output(in)
		if ok {
			return out, true
		}
		p.cursor++
		p.stepBegun = false
		p.activate()
	}
	return core.ControlOutput{}, false
}

// IsComplete reports whether every step has finished.
func (p *Plan) IsComplete() bool {
	if !p.begun {
		return len(p.steps) == 0
	}
	return p.cursor >= len(p.steps)
}

// CanInterrupt is the active step's answer, or true when there is none.
func (p *Plan) CanInterrupt() bool {
	if p.cursor >= len(p.steps) {
		return true
	}
	return p.steps[p.cursor].CanInterrupt()
}

// YieldsTo reports whether a plan of the given posture should replace p.
func (p *Plan) YieldsTo(posture Posture) bool {
	if p == nil || p.IsComplete() {
		return true
	}
	return p.CanInterrupt() && p.posture.LessUrgentThan(posture)
}

// Situation describes the plan for debugging.
func (p *Plan) Situation() string {
	var b strings.Builder
	b.WriteString(p.posture.String())
	if p.cursor < len(p.steps) {
		b.WriteString(": ")
		b.WriteString(p.steps[p.cursor].Situation())
	} else {
		b.WriteString(": done")
	}
	return b.String()
}

// Steps returns the number of steps in the plan.
func (p *Plan) Steps() int { return len(p.steps) }
