// Package streaming defines the messages the websocket storage backend sends
// to a tuning dashboard. Frames use the host protocol's envelope and ack.
package streaming

import (
	"github.com/strikerbot/planner/pkg/core"
	"github.com/strikerbot/planner/pkg/hostio"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession    = "start_session"
	TypeEndSession      = "end_session"
	TypeBallPath        = "ball_path"
	TypeCarPath         = "car_path"
	TypePredictionError = "prediction_error"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope = hostio.Envelope

// AckMessage is the server's acknowledgement response.
type AckMessage = hostio.AckMessage

// StartSessionPayload announces a session. ID is assigned by the client.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// PathPayload carries a finished trajectory.
type PathPayload struct {
	Trajectory *core.Trajectory `json:"trajectory"`
}
