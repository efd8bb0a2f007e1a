// Package parser turns host tick payloads into validated snapshots.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
	"github.com/strikerbot/planner/pkg/hostio"
)

// ErrInvalidSnapshot marks a payload that cannot be planned on. The caller
// answers it with an idle output.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Parser provides pure payload -> core struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger

	parsed   atomic.Uint64
	rejected atomic.Uint64
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Stats returns how many payloads were parsed and rejected so far.
func (p *Parser) Stats() (parsed, rejected uint64) {
	return p.parsed.Load(), p.rejected.Load()
}

// ParseSnapshot decodes and validates a tick payload. Non-finite numbers,
// unknown teams, and a player index with no matching car are rejected with
// an error wrapping ErrInvalidSnapshot.
func (p *Parser) ParseSnapshot(raw json.RawMessage) (core.Snapshot, error) {
	var payload hostio.TickPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		p.rejected.Add(1)
		return core.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	snap, err := SnapshotFromPayload(payload)
	if err != nil {
		p.rejected.Add(1)
		p.logger.Debug("Rejected snapshot", "frame", payload.Frame, "error", err)
		return core.Snapshot{}, err
	}

	p.parsed.Add(1)
	return snap, nil
}

// SnapshotFromPayload converts an already decoded payload.
func SnapshotFromPayload(payload hostio.TickPayload) (core.Snapshot, error) {
	if !finite(payload.Time) || payload.Time < 0 {
		return core.Snapshot{}, fmt.Errorf("%w: time %v", ErrInvalidSnapshot, payload.Time)
	}
	if payload.Frame < 0 {
		return core.Snapshot{}, fmt.Errorf("%w: frame %d", ErrInvalidSnapshot, payload.Frame)
	}
	team, err := parseTeam(payload.Team)
	if err != nil {
		return core.Snapshot{}, err
	}

	now := core.GameTimeFromSeconds(payload.Time)
	snap := core.Snapshot{
		Time:        now,
		FrameCount:  uint(payload.Frame),
		PlayerIndex: payload.PlayerIndex,
		Team:        team,
		Cars:        make([]core.CarState, 0, len(payload.Cars)),
	}

	ball, err := parseBody(payload.Ball, now)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("ball: %w", err)
	}
	snap.Ball = core.BallState{BodyState: ball}

	for i, c := range payload.Cars {
		car, err := parseCar(c, now)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("car %d: %w", i, err)
		}
		snap.Cars = append(snap.Cars, car)
	}

	if _, ok := snap.MyCar(); !ok {
		return core.Snapshot{}, fmt.Errorf("%w: no car for player %d", ErrInvalidSnapshot, payload.PlayerIndex)
	}

	if t := payload.LatestTouch; t != nil {
		touchTeam, err := parseTeam(t.Team)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("touch: %w", err)
		}
		if !finite(t.Time) {
			return core.Snapshot{}, fmt.Errorf("%w: touch time %v", ErrInvalidSnapshot, t.Time)
		}
		snap.LatestTouch = &core.Touch{
			PlayerIndex: t.PlayerIndex,
			Team:        touchTeam,
			Time:        core.GameTimeFromSeconds(t.Time),
		}
	}

	return snap, nil
}

func parseTeam(t int) (core.Team, error) {
	switch core.Team(t) {
	case core.TeamBlue, core.TeamOrange:
		return core.Team(t), nil
	}
	return 0, fmt.Errorf("%w: team %d", ErrInvalidSnapshot, t)
}

func parseBody(b hostio.BodyPayload, now core.GameTime) (core.BodyState, error) {
	pos, err := vec(b.Position, "position")
	if err != nil {
		return core.BodyState{}, err
	}
	vel, err := vec(b.Velocity, "velocity")
	if err != nil {
		return core.BodyState{}, err
	}
	spin, err := vec(b.Spin, "spin")
	if err != nil {
		return core.BodyState{}, err
	}
	return core.BodyState{Position: pos, Velocity: vel, Spin: spin, Time: now}, nil
}

func parseCar(c hostio.CarPayload, now core.GameTime) (core.CarState, error) {
	body, err := parseBody(c.BodyPayload, now)
	if err != nil {
		return core.CarState{}, err
	}
	team, err := parseTeam(c.Team)
	if err != nil {
		return core.CarState{}, err
	}
	nose, err := vec(c.Nose, "nose")
	if err != nil {
		return core.CarState{}, err
	}
	roof, err := vec(c.Roof, "roof")
	if err != nil {
		return core.CarState{}, err
	}
	if !finite(c.Boost) {
		return core.CarState{}, fmt.Errorf("%w: boost %v", ErrInvalidSnapshot, c.Boost)
	}

	orientation := core.DefaultOrientation
	if !nose.IsZero() && !roof.IsZero() {
		orientation = core.Orientation{Nose: nose.Normalized(), Roof: roof.Normalized()}
	}

	return core.CarState{
		BodyState:       body,
		Orientation:     orientation,
		Boost:           math.Max(0, math.Min(100, c.Boost)),
		Supersonic:      c.Supersonic,
		HasWheelContact: c.WheelContact,
		Team:            team,
		PlayerIndex:     c.Index,
		Demolished:      c.Demolished,
		Name:            c.Name,
	}, nil
}

func vec(v hostio.Vec3, field string) (vmath.Vector3, error) {
	out := vmath.V3(v[0], v[1], v[2])
	if !out.IsFinite() {
		return vmath.Vector3{}, fmt.Errorf("%w: %s %v", ErrInvalidSnapshot, field, v)
	}
	return out, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
