// Package recorder captures ball and car trajectories from live ticks and
// hands finished recordings to a storage backend.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/strikerbot/planner/internal/dispatcher"
	"github.com/strikerbot/planner/internal/prediction"
	"github.com/strikerbot/planner/internal/storage"
	"github.com/strikerbot/planner/internal/tuning"
	"github.com/strikerbot/planner/pkg/core"
	"github.com/strikerbot/planner/pkg/hostio"
)

const (
	ActionStart = "start"
	ActionStop  = "stop"

	defaultMaxDuration = 10 * time.Second
	bufferSize         = 64
	uploadTimeout      = time.Minute
)

// ErrUnknownAction is returned for record messages with an unexpected action.
var ErrUnknownAction = errors.New("unknown record action")

// PointWriter receives prediction errors as telemetry.
type PointWriter interface {
	WritePredictionError(ctx context.Context, label string, e core.PredictionError) error
}

// Uploader sends an exported recording file elsewhere.
type Uploader interface {
	Upload(ctx context.Context, filePath string, meta core.UploadMetadata) error
}

// Dependencies holds all dependencies for the recorder
type Dependencies struct {
	Backend storage.Backend
	Logger  *slog.Logger
	// Points is optional.
	Points PointWriter
	// Uploader is optional; it is used when the backend exports files.
	Uploader Uploader
	// MaxDuration bounds a recording in game time; it stops itself when reached.
	MaxDuration time.Duration
	// RecordEvery keeps one tick in n.
	RecordEvery int
}

// Manager owns the active recording. RecordTick and ObservePrediction run on
// the tick goroutine and only append under a mutex; storage writes happen on
// the dispatcher's buffered record handler.
type Manager struct {
	deps     Dependencies
	dispatch func(dispatcher.Event) (any, error)

	mu     sync.Mutex
	active *recording
	label  string
}

type recording struct {
	session   core.Session
	started   bool
	startedAt core.GameTime
	ticks     int
	full      bool
	ball      core.Trajectory
	cars      map[int]*core.Trajectory
	carOrder  []int
	errors    []core.PredictionError
}

// NewManager creates a recorder.
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxDuration <= 0 {
		deps.MaxDuration = defaultMaxDuration
	}
	if deps.RecordEvery < 1 {
		deps.RecordEvery = 1
	}
	m := &Manager{deps: deps}
	// without a dispatcher, a full recording is stopped on its own goroutine
	m.dispatch = func(e dispatcher.Event) (any, error) {
		go func() { _, _ = m.handleRecord(e) }()
		return nil, nil
	}
	return m
}

// RegisterHandlers registers the record command. Storage writes run on the
// buffered handler so they never hold up a tick.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(hostio.TypeRecord, m.handleRecord, dispatcher.Buffered(bufferSize), dispatcher.Logged())
	m.dispatch = d.Dispatch
}

func (m *Manager) handleRecord(e dispatcher.Event) (any, error) {
	var p hostio.RecordPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse record payload: %w", err)
	}

	var err error
	switch p.Action {
	case ActionStart:
		err = m.Start(p.Label)
	case ActionStop:
		err = m.StopLabel(p.Label)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, p.Action)
	}
	if err != nil {
		m.deps.Logger.Error("Record command failed", "action", p.Action, "label", p.Label, "error", err)
	}
	return nil, err
}

// Start opens a new recording. A recording already running is finished
// first.
func (m *Manager) Start(label string) error {
	m.mu.Lock()
	previous := m.active
	m.active = &recording{
		session: core.Session{Label: label, StartTime: time.Now().UTC()},
		ball: core.Trajectory{
			Kind:        core.TrajectoryBall,
			Label:       label,
			PlayerIndex: core.BallPlayerIndex,
		},
		cars: make(map[int]*core.Trajectory),
	}
	m.label = label
	m.mu.Unlock()

	m.deps.Logger.Info("Recording started", "label", label)
	if previous != nil {
		return m.persist(previous)
	}
	return nil
}

// Stop finishes the active recording, if any, and persists it.
func (m *Manager) Stop() error {
	return m.StopLabel("")
}

// StopLabel stops the active recording only if its label matches. An empty
// label matches any recording.
func (m *Manager) StopLabel(label string) error {
	m.mu.Lock()
	rec := m.active
	if rec == nil || (label != "" && rec.session.Label != label) {
		m.mu.Unlock()
		return nil
	}
	m.active = nil
	m.mu.Unlock()

	return m.persist(rec)
}

// Recording reports whether a recording is open, and its label.
func (m *Manager) Recording() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.label, true
}

// RecordTick appends the tick's ball and car states to the active recording.
func (m *Manager) RecordTick(in *core.Snapshot, _ core.ControlOutput) {
	if in == nil {
		return
	}

	m.mu.Lock()
	rec := m.active
	if rec == nil || rec.full {
		m.mu.Unlock()
		return
	}
	if !rec.started {
		rec.started = true
		rec.startedAt = in.Time
		rec.session.PlayerIndex = in.PlayerIndex
		rec.session.Team = in.Team
	}
	if len(rec.ball.Samples) > 0 && !in.Time.After(rec.ball.Samples[len(rec.ball.Samples)-1].Time) {
		m.mu.Unlock()
		return
	}

	if rec.ticks%m.deps.RecordEvery == 0 {
		rec.ball.Samples = append(rec.ball.Samples, in.Ball.BodyState)
		for _, c := range in.Cars {
			if c.Demolished {
				continue
			}
			t, ok := rec.cars[c.PlayerIndex]
			if !ok {
				t = &core.Trajectory{Kind: core.TrajectoryCar, Label: rec.session.Label, PlayerIndex: c.PlayerIndex}
				rec.cars[c.PlayerIndex] = t
				rec.carOrder = append(rec.carOrder, c.PlayerIndex)
			}
			t.Samples = append(t.Samples, c.BodyState)
		}
	}
	rec.ticks++

	elapsed := in.Time.Sub(rec.startedAt)
	if elapsed >= m.deps.MaxDuration {
		rec.full = true
	}
	full, label := rec.full, rec.session.Label
	m.mu.Unlock()

	if full {
		m.requestStop(label)
	}
}

// ObservePrediction measures a matured prediction. The error is written as
// telemetry and, while recording, kept with the session.
func (m *Manager) ObservePrediction(entry prediction.Entry, actual core.BallState) {
	e := tuning.PredictionError(entry, actual)

	m.mu.Lock()
	label := m.label
	if m.active != nil && !m.active.full {
		m.active.errors = append(m.active.errors, e)
	}
	m.mu.Unlock()

	if m.deps.Points != nil {
		if err := m.deps.Points.WritePredictionError(context.Background(), label, e); err != nil {
			m.deps.Logger.Debug("Failed to write prediction error point", "error", err)
		}
	}
}

func (m *Manager) requestStop(label string) {
	payload, _ := json.Marshal(hostio.RecordPayload{Action: ActionStop, Label: label})
	if _, err := m.dispatch(dispatcher.Event{
		Command:   hostio.TypeRecord,
		Payload:   payload,
		Timestamp: time.Now(),
	}); err != nil {
		m.deps.Logger.Error("Failed to request recording stop", "label", label, "error", err)
	}
}

// persist writes a detached recording to the backend. Trajectories with fewer
// than two samples are skipped.
func (m *Manager) persist(rec *recording) error {
	log := m.deps.Logger.With("label", rec.session.Label)

	if !rec.started {
		log.Info("Recording discarded, no ticks")
		return nil
	}

	b := m.deps.Backend
	session := rec.session
	if err := b.StartSession(&session); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	var errs []error
	if len(rec.ball.Samples) >= 2 {
		ball := rec.ball
		ball.SessionID = session.ID
		errs = append(errs, b.RecordBallPath(&ball))
	}
	for _, idx := range rec.carOrder {
		car := *rec.cars[idx]
		if len(car.Samples) < 2 {
			continue
		}
		car.SessionID = session.ID
		errs = append(errs, b.RecordCarPath(&car))
	}
	for i := range rec.errors {
		e := rec.errors[i]
		e.SessionID = session.ID
		errs = append(errs, b.RecordPredictionError(&e))
	}
	errs = append(errs, b.EndSession())

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to persist recording %q: %w", session.Label, err)
	}

	log.Info("Recording saved",
		"session", session.ID,
		"ballSamples", len(rec.ball.Samples),
		"cars", len(rec.carOrder),
		"predictionErrors", len(rec.errors),
		"duration", rec.ball.Duration(),
	)
	if u, ok := b.(storage.Uploadable); ok {
		m.upload(u, log)
	}
	return nil
}

func (m *Manager) upload(u storage.Uploadable, log *slog.Logger) {
	path := u.GetExportedFilePath()
	if path == "" {
		return
	}
	log.Info("Recording exported", "path", path)
	if m.deps.Uploader == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()
	if err := m.deps.Uploader.Upload(ctx, path, u.GetExportMetadata()); err != nil {
		log.Error("Failed to upload recording", "path", path, "error", err)
		return
	}
	log.Info("Recording uploaded", "path", path)
}
