package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/strikerbot/planner/pkg/core"
	"github.com/strikerbot/planner/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams recordings over WebSocket to a tuning dashboard.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn          *connection
	cfg           Config
	nextSessionID atomic.Uint64
	sessionID     atomic.Uint64
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	env := streaming.Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, msgType, ackTimeout)
}

// StartSession assigns a session ID, sends the session and waits for the
// server ack.
func (b *Backend) StartSession(s *core.Session) error {
	s.ID = uint(b.nextSessionID.Add(1))
	b.sessionID.Store(uint64(s.ID))

	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	err := b.sendEnvelopeAndWait(streaming.TypeEndSession, nil)

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()
	b.sessionID.Store(0)

	return err
}

func (b *Backend) RecordBallPath(t *core.Trajectory) error {
	return b.sendPath(streaming.TypeBallPath, t, core.TrajectoryBall)
}

func (b *Backend) RecordCarPath(t *core.Trajectory) error {
	return b.sendPath(streaming.TypeCarPath, t, core.TrajectoryCar)
}

func (b *Backend) sendPath(msgType string, t *core.Trajectory, kind core.TrajectoryKind) error {
	stamped := *t
	stamped.Kind = kind
	stamped.SessionID = uint(b.sessionID.Load())
	return b.sendEnvelope(msgType, streaming.PathPayload{Trajectory: &stamped})
}

func (b *Backend) RecordPredictionError(e *core.PredictionError) error {
	stamped := *e
	stamped.SessionID = uint(b.sessionID.Load())
	return b.sendEnvelope(streaming.TypePredictionError, &stamped)
}
