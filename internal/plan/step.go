// Package plan sequences behaviour steps into plans and runs the active step
// once per tick.
package plan

import "github.com/strikerbot/planner/pkg/core"

// Step is one unit of behaviour. A step is owned by exactly one plan and is
// dropped without notice when the plan is abandoned, so steps must not hold
// resources that need releasing.
type Step interface {
	// Begin is called once, when the step becomes active.
	Begin()
	// Output produces this tick's controls. ok=false means the step is
	// complete and the plan should move on.
	Output(in *core.Snapshot) (out core.ControlOutput, ok bool)
	// CanInterrupt reports whether a more urgent plan may replace this step
	// before it completes.
	CanInterrupt() bool
	// BlindlyComplete reports whether the step can be skipped without ever
	// running.
	BlindlyComplete() bool
	// Situation is a short debug label.
	Situation() string
}
