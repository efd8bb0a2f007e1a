// Package hostio defines the line-delimited JSON protocol spoken with the
// game host.
package hostio

import (
	"encoding/json"
	"fmt"

	"github.com/strikerbot/planner/pkg/core"
)

// Message type constants.
const (
	TypeTick   = "tick"
	TypeOutput = "output"
	TypeReset  = "reset"
	TypeRecord = "record"
	TypeAck    = "ack"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckMessage acknowledges a non-tick message.
type AckMessage struct {
	Type  string `json:"type"` // always "ack"
	For   string `json:"for"`
	Error string `json:"error,omitempty"`
}

// Vec3 is a vector as the host sends it.
type Vec3 [3]float64

// BodyPayload is the kinematic part of the ball and of each car.
type BodyPayload struct {
	Position Vec3 `json:"position"`
	Velocity Vec3 `json:"velocity"`
	Spin     Vec3 `json:"spin"`
}

// CarPayload is one car in a tick.
type CarPayload struct {
	BodyPayload
	Nose         Vec3    `json:"nose"`
	Roof         Vec3    `json:"roof"`
	Boost        float64 `json:"boost"`
	Supersonic   bool    `json:"supersonic"`
	WheelContact bool    `json:"wheelContact"`
	Demolished   bool    `json:"demolished"`
	Team         int     `json:"team"`
	Index        int     `json:"index"`
	Name         string  `json:"name,omitempty"`
}

// TouchPayload is the latest ball touch.
type TouchPayload struct {
	Time        float64 `json:"time"`
	Position    Vec3    `json:"position"`
	Team        int     `json:"team"`
	PlayerIndex int     `json:"playerIndex"`
}

// TickPayload is the world state for one tick.
type TickPayload struct {
	// Time is game seconds.
	Time        float64       `json:"time"`
	Frame       int64         `json:"frame"`
	PlayerIndex int           `json:"playerIndex"`
	Team        int           `json:"team"`
	Cars        []CarPayload  `json:"cars"`
	Ball        BodyPayload   `json:"ball"`
	LatestTouch *TouchPayload `json:"latestTouch,omitempty"`
}

// RecordPayload starts or stops a trajectory recording.
type RecordPayload struct {
	Action string `json:"action"` // "start" or "stop"
	Label  string `json:"label,omitempty"`
}

// ControlVector is the eight-field output the host expects: throttle, steer,
// pitch, yaw, roll, jump, boost, handbrake, with bools as 0 or 1.
type ControlVector [8]float64

// NewControlVector encodes out after clamping it to legal ranges.
func NewControlVector(out core.ControlOutput) ControlVector {
	out = out.Clamped()
	return ControlVector{
		out.Throttle, out.Steer, out.Pitch, out.Yaw, out.Roll,
		boolFloat(out.Jump), boolFloat(out.Boost), boolFloat(out.Handbrake),
	}
}

// Output decodes the vector back into a control output.
func (v ControlVector) Output() core.ControlOutput {
	return core.ControlOutput{
		Throttle:  v[0],
		Steer:     v[1],
		Pitch:     v[2],
		Yaw:       v[3],
		Roll:      v[4],
		Jump:      v[5] >= 0.5,
		Boost:     v[6] >= 0.5,
		Handbrake: v[7] >= 0.5,
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewEnvelope marshals payload under type t.
func NewEnvelope(t string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Envelope{Type: t, Payload: raw}, nil
}
