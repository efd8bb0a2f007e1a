// pkg/core/output.go
package core

import (
	"fmt"

	"github.com/strikerbot/planner/internal/vmath"
)

// ControlOutput is one tick's worth of controller input. The zero value is a
// legal idle output.
type ControlOutput struct {
	Throttle  float64 `json:"throttle"`
	Steer     float64 `json:"steer"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	Roll      float64 `json:"roll"`
	Jump      bool    `json:"jump"`
	Boost     bool    `json:"boost"`
	Handbrake bool    `json:"handbrake"`
}

func (o ControlOutput) WithThrottle(v float64) ControlOutput { o.Throttle = v; return o }
func (o ControlOutput) WithSteer(v float64) ControlOutput    { o.Steer = v; return o }
func (o ControlOutput) WithPitch(v float64) ControlOutput    { o.Pitch = v; return o }
func (o ControlOutput) WithYaw(v float64) ControlOutput      { o.Yaw = v; return o }
func (o ControlOutput) WithRoll(v float64) ControlOutput     { o.Roll = v; return o }
func (o ControlOutput) WithJump(v bool) ControlOutput        { o.Jump = v; return o }
func (o ControlOutput) WithBoost(v bool) ControlOutput       { o.Boost = v; return o }
func (o ControlOutput) WithSlide(v bool) ControlOutput       { o.Handbrake = v; return o }

// Clamped forces every analog axis into [-1, 1]. NaN axes become zero.
func (o ControlOutput) Clamped() ControlOutput {
	o.Throttle = clampAxis(o.Throttle)
	o.Steer = clampAxis(o.Steer)
	o.Pitch = clampAxis(o.Pitch)
	o.Yaw = clampAxis(o.Yaw)
	o.Roll = clampAxis(o.Roll)
	return o
}

func clampAxis(v float64) float64 {
	if v != v {
		return 0
	}
	return vmath.Clamp(v, -1, 1)
}

func (o ControlOutput) String() string {
	return fmt.Sprintf("thr=%.2f str=%.2f p=%.2f y=%.2f r=%.2f jump=%t boost=%t slide=%t",
		o.Throttle, o.Steer, o.Pitch, o.Yaw, o.Roll, o.Jump, o.Boost, o.Handbrake)
}
