package plan

import "github.com/strikerbot/planner/pkg/core"

// NestedPlan lets a step delegate to a sub-plan of its own. Embed it and call
// ActiveOutput before deciding anything fresh.
type NestedPlan struct {
	plan *Plan
}

// StartPlan replaces any running sub-plan with p and runs it for this tick.
func (n *NestedPlan) StartPlan(p *Plan, in *core.Snapshot) (core.ControlOutput, bool) {
	n.plan = p
	p.Begin()
	return n.ActiveOutput(in)
}

// ActiveOutput runs the sub-plan if one is in progress. ok is false when there
// is none or it just finished.
func (n *NestedPlan) ActiveOutput(in *core.Snapshot) (core.ControlOutput, bool) {
	if n.plan == nil {
		return core.ControlOutput{}, false
	}
	out, ok := n.plan.Output(in)
	if !ok {
		n.plan = nil
	}
	return out, ok
}

// HasActivePlan reports whether a sub-plan is running.
func (n *NestedPlan) HasActivePlan() bool { return n.plan != nil && !n.plan.IsComplete() }

// CanInterrupt is true with no sub-plan, otherwise the sub-plan's answer.
func (n *NestedPlan) CanInterrupt() bool {
	return n.plan == nil || n.plan.CanInterrupt()
}

// SubSituation is the running sub-plan's label, or empty.
func (n *NestedPlan) SubSituation() string {
	if n.plan == nil {
		return ""
	}
	return n.plan.Situation()
}
