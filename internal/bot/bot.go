// Package bot runs the planner for one tick at a time.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/strikerbot/planner/internal/cache"
	"github.com/strikerbot/planner/internal/carpredict"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/plan"
	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/prediction"
	"github.com/strikerbot/planner/internal/steps/defense"
	"github.com/strikerbot/planner/internal/steps/strikes"
	"github.com/strikerbot/planner/internal/strategy"
	"github.com/strikerbot/planner/pkg/core"
)

// Config tunes the planner.
type Config struct {
	Predictor  physics.PredictorConfig
	CarHorizon time.Duration
	// PredictionLookahead is how far ahead each tick's prediction is stored
	// for later comparison with what the ball actually did.
	PredictionLookahead time.Duration
	// BoostAssumption caps the boost the reach model may spend.
	BoostAssumption    float64
	FlipCutoffDistance float64
}

// DefaultConfig matches the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Predictor:           physics.DefaultPredictorConfig(),
		CarHorizon:          4 * time.Second,
		PredictionLookahead: time.Second,
		BoostAssumption:     100,
	}
}

// Recorder receives every answered tick. It must not block.
type Recorder interface {
	RecordTick(in *core.Snapshot, out core.ControlOutput)
}

// PredictionObserver receives a stored prediction together with the ball
// state observed at the predicted moment.
type PredictionObserver func(entry prediction.Entry, actual core.BallState)

// Option configures a Bot.
type Option func(*Bot)

// WithRecorder attaches a recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

// WithPredictionObserver attaches a prediction accuracy hook.
func WithPredictionObserver(fn PredictionObserver) Option {
	return func(b *Bot) { b.observer = fn }
}

// Bot owns the planning state for one controlled car. It is not safe for
// concurrent use: the host calls Output once per tick.
type Bot struct {
	cfg    Config
	logger *slog.Logger

	predictor *physics.Predictor
	warehouse *prediction.Warehouse
	profiles  *cache.ProfileCache
	metrics   *metrics

	active   *plan.Plan
	lastTick *core.GameTime
	// consumeFrom is the earliest tick whose prediction was stored a full
	// lookahead earlier.
	consumeFrom *core.GameTime
	zone        *planning.Zone

	recorder Recorder
	observer PredictionObserver
}

// New creates a Bot.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Bot, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("bot metrics: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		predictor: physics.NewPredictor(cfg.Predictor),
		warehouse: prediction.NewWarehouse(),
		profiles:  cache.NewProfileCache(cfg.CarHorizon),
		metrics:   m,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Reset drops all planning state, e.g. on kickoff.
func (b *Bot) Reset() {
	b.active = nil
	b.lastTick = nil
	b.consumeFrom = nil
	b.zone = nil
	b.predictor.Invalidate()
	b.warehouse.Reset()
	b.profiles.Reset()
}

// Situation describes what the bot is doing.
func (b *Bot) Situation() string {
	if b.active == nil {
		return "Idle"
	}
	return b.active.Situation()
}

// Output answers one tick. It never panics: any failure inside planning is
// logged and answered with the fallback output.
func (b *Bot) Output(in *core.Snapshot) (out core.ControlOutput) {
	ctx := context.Background()
	b.metrics.ticks.Add(ctx, 1)

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Planning panicked", "frame", in.FrameCount, "panic", r, "stack", string(debug.Stack()))
			b.active = nil
			out = b.fallback(ctx, in, "panic")
		}
		out = out.Clamped()
		b.record(in, out)
	}()

	if b.lastTick != nil && in.Time.Before(*b.lastTick) {
		b.logger.Info("Game time went backwards, resetting", "from", *b.lastTick, "to", in.Time)
		b.Reset()
	}
	now := in.Time
	b.lastTick = &now

	car, ok := in.MyCar()
	if !ok || car.Demolished {
		b.active = nil
		return core.ControlOutput{}
	}

	path, refreshed := b.predictor.Path(in.Ball)
	if refreshed {
		b.metrics.pathRefreshes.Add(ctx, 1)
	}
	b.trackPrediction(ctx, in, path)
	b.trackZone(car)

	if next := b.choosePlan(in, path); next != nil {
		b.startPlan(ctx, next)
	}

	// A plan that finishes on its first tick hands over to an offensive one
	// within the same tick.
	for attempt := 0; attempt < 2 && b.active != nil; attempt++ {
		if o, ok := b.active.Output(in); ok {
			return o
		}
		done := b.active.Posture()
		b.logger.Debug("Plan complete", "plan", b.active.Situation())
		b.active = nil
		if done != plan.Offensive {
			b.startPlan(ctx, plan.New(plan.Offensive, b.intercept(strategy.KickAtEnemyGoal{})))
		}
	}
	return b.fallback(ctx, in, "no plan")
}

// choosePlan returns the most urgent plan the active one yields to, if any.
func (b *Bot) choosePlan(in *core.Snapshot, path *physics.BallPath) *plan.Plan {
	switch {
	case b.active.YieldsTo(plan.Save) && b.goalThreatened(in, path):
		return plan.New(plan.Save, b.intercept(strategy.KickAwayFromOwnGoal{}))
	case b.active.YieldsTo(plan.Defensive) && strategy.NeedDefense(in):
		return plan.New(plan.Defensive, defense.NewGetOnDefenseStep())
	case b.active.YieldsTo(plan.Offensive):
		return plan.New(plan.Offensive, b.intercept(strategy.KickAtEnemyGoal{}))
	}
	return nil
}

func (b *Bot) startPlan(ctx context.Context, next *plan.Plan) {
	if b.active != nil && !b.active.IsComplete() {
		b.logger.Debug("Interrupting plan", "from", b.active.Situation(), "to", next.Posture())
	}
	b.active = next
	b.active.Begin()
	b.metrics.planSwitches.Add(ctx, 1, metric.WithAttributes(attribute.String("posture", next.Posture().String())))
}

func (b *Bot) goalThreatened(in *core.Snapshot, path *physics.BallPath) bool {
	_, ok := path.GoalEntry(planning.OwnGoal(in.Team).Side)
	return ok
}

func (b *Bot) intercept(kick strategy.KickStrategy) *strikes.InterceptStep {
	return strikes.NewInterceptStep(kick, b.profiles, b.predictor).WithAssumption(b.assumption)
}

func (b *Bot) assumption(car core.CarState) carpredict.Assumption {
	return carpredict.Assumption{
		BoostBudget:        math.Min(car.Boost, b.cfg.BoostAssumption),
		FlipCutoffDistance: b.cfg.FlipCutoffDistance,
	}
}

// trackPrediction stores where the path says the ball will be one lookahead
// from now, and compares the prediction made for now with the real ball.
func (b *Bot) trackPrediction(ctx context.Context, in *core.Snapshot, path *physics.BallPath) {
	if b.cfg.PredictionLookahead <= 0 {
		return
	}

	moment := in.Time.Plus(b.cfg.PredictionLookahead)
	if slice, ok := path.MotionAt(moment); ok {
		err := b.warehouse.Add(prediction.Entry{PredictedMoment: moment, Ball: slice.Ball(), MadeAt: in.Time})
		if err != nil {
			b.logger.Debug("Prediction not stored", "error", err)
		} else if b.consumeFrom == nil {
			b.consumeFrom = &moment
		}
	}

	if b.consumeFrom == nil || in.Time.Before(*b.consumeFrom) {
		return
	}
	entry, ok := b.warehouse.TakeAtOrAfter(in.Time)
	if !ok {
		return
	}
	miss := entry.Ball.Position.Distance(in.Ball.Position)
	b.metrics.predictionError.Record(ctx, miss)
	if b.observer != nil {
		b.observer(entry, in.Ball)
	}
}

func (b *Bot) trackZone(car core.CarState) {
	z := planning.ZoneOf(car.Position.Flatten())
	if b.zone == nil || *b.zone != z {
		b.logger.Debug("Zone changed", "zone", z.String(), "player", car.PlayerIndex)
		b.zone = &z
	}
}

func (b *Bot) record(in *core.Snapshot, out core.ControlOutput) {
	if b.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recorder panicked", "frame", in.FrameCount, "panic", r)
		}
	}()
	b.recorder.RecordTick(in, out)
}

// fallback drives at the ball. It is the answer whenever no plan produces
// output, so it must not depend on anything that can fail.
func (b *Bot) fallback(ctx context.Context, in *core.Snapshot, reason string) (out core.ControlOutput) {
	b.metrics.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	defer func() {
		if r := recover(); r != nil {
			out = core.ControlOutput{}
		}
	}()
	car, ok := in.MyCar()
	if !ok {
		return core.ControlOutput{}
	}
	return planning.SteerTowardGroundPosition(car, in.Ball.Position.Flatten())
}
