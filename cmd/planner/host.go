package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/strikerbot/planner/internal/bot"
	"github.com/strikerbot/planner/internal/dispatcher"
	"github.com/strikerbot/planner/internal/monitor"
	"github.com/strikerbot/planner/internal/parser"
	"github.com/strikerbot/planner/internal/recorder"
	"github.com/strikerbot/planner/pkg/core"
	"github.com/strikerbot/planner/pkg/hostio"
)

// Host connects the line protocol to the planner: every tick line is answered
// with exactly one output line, every other message with an ack.
type Host struct {
	bot      *bot.Bot
	parser   *parser.Parser
	recorder *recorder.Manager
	out      *hostio.Writer
	logger   *slog.Logger

	dispatcher *dispatcher.Dispatcher

	frame       atomic.Int64
	playerIndex atomic.Int64
	situation   atomic.Value
	lastTick    atomic.Int64
}

// NewHost builds the tick path and registers its commands on d. rec may be
// nil when recording is disabled.
func NewHost(d *dispatcher.Dispatcher, b *bot.Bot, rec *recorder.Manager, out io.Writer, logger *slog.Logger) *Host {
	h := &Host{
		bot:        b,
		parser:     parser.NewParser(logger),
		recorder:   rec,
		out:        hostio.NewWriter(out),
		logger:     logger,
		dispatcher: d,
	}
	h.playerIndex.Store(-1)
	h.situation.Store("Idle")

	d.Register(hostio.TypeTick, h.handleTick)
	d.Register(hostio.TypeReset, h.handleReset, dispatcher.Logged())
	if rec != nil {
		rec.RegisterHandlers(d)
	}
	return h
}

// LogContext feeds the current frame and player into every log record.
func (h *Host) LogContext() []slog.Attr {
	attrs := []slog.Attr{slog.Int64("frame", h.frame.Load())}
	if idx := h.playerIndex.Load(); idx >= 0 {
		attrs = append(attrs, slog.Int64("playerIndex", idx))
	}
	return attrs
}

// Run reads envelopes until the input ends or ctx is cancelled. Malformed
// lines are logged and skipped.
func (h *Host) Run(ctx context.Context, in io.Reader) error {
	r := hostio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, hostio.ErrMalformedLine) {
			h.logger.Warn("Skipping malformed line", "error", err)
			continue
		}
		if err != nil {
			return err
		}

		if err := h.handle(e); err != nil {
			return fmt.Errorf("failed to answer %s: %w", e.Type, err)
		}
	}
}

func (h *Host) handle(e hostio.Envelope) error {
	result, err := h.dispatcher.Dispatch(dispatcher.Event{
		Command:   e.Type,
		Payload:   e.Payload,
		Timestamp: time.Now(),
	})

	if e.Type == hostio.TypeTick {
		v, ok := result.(hostio.ControlVector)
		if !ok {
			v = hostio.NewControlVector(core.ControlOutput{})
		}
		return h.out.WriteOutput(v)
	}
	return h.out.WriteAck(e.Type, err)
}

// handleTick never fails: a snapshot that cannot be parsed gets an idle output.
func (h *Host) handleTick(e dispatcher.Event) (any, error) {
	snap, err := h.parser.ParseSnapshot(e.Payload)
	if err != nil {
		h.logger.Debug("Answering bad tick with idle output", "error", err)
		return hostio.NewControlVector(core.ControlOutput{}), nil
	}

	h.frame.Store(int64(snap.FrameCount))
	h.playerIndex.Store(int64(snap.PlayerIndex))

	start := time.Now()
	out := h.bot.Output(&snap)
	h.lastTick.Store(int64(time.Since(start)))
	h.situation.Store(h.bot.Situation())

	return hostio.NewControlVector(out), nil
}

// Status reports what the planner is doing for the status monitor. It is
// safe to call from any goroutine.
func (h *Host) Status() monitor.Status {
	parsed, rejected := h.parser.Stats()
	st := monitor.Status{
		Time:          time.Now(),
		Frame:         h.frame.Load(),
		Situation:     h.situation.Load().(string),
		TicksParsed:   parsed,
		TicksRejected: rejected,
		LastTick:      float64(h.lastTick.Load()) / float64(time.Millisecond),
	}
	if h.recorder != nil {
		if label, ok := h.recorder.Recording(); ok {
			st.Recording = label
			if label == "" {
				st.Recording = "(unlabelled)"
			}
		}
	}
	return st
}

func (h *Host) handleReset(e dispatcher.Event) (any, error) {
	h.bot.Reset()
	h.situation.Store(h.bot.Situation())
	if h.recorder != nil {
		if label, ok := h.recorder.Recording(); ok {
			payload, _ := json.Marshal(hostio.RecordPayload{Action: recorder.ActionStop, Label: label})
			if _, err := h.dispatcher.Dispatch(dispatcher.Event{
				Command:   hostio.TypeRecord,
				Payload:   payload,
				Timestamp: e.Timestamp,
			}); err != nil {
				h.logger.Warn("Failed to stop recording on reset", "label", label, "error", err)
			}
		}
	}
	parsed, rejected := h.parser.Stats()
	h.logger.Info("Planner reset", "parsed", parsed, "rejected", rejected)
	return nil, nil
}
