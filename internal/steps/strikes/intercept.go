// Package strikes contains steps that go and hit the ball.
package strikes

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/strikerbot/planner/internal/carpredict"
	"github.com/strikerbot/planner/internal/intercept"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/plan"
	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/reach"
	"github.com/strikerbot/planner/internal/steps"
	"github.com/strikerbot/planner/internal/strategy"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

const (
	// contactOffset is how far behind the ball centre the car's nose aims.
	contactOffset = physics.BallRadius + 1.2
	// flipHeight is the highest contact point a flip still reaches.
	flipHeight = 3.5
	// maxSlip is how much later the intercept may drift before the step
	// gives up on the ball it started chasing.
	maxSlip = time.Second
	// launchAngle is the widest misalignment a strike is launched with.
	launchAngle = math.Pi / 8
	jumpSpeed   = 5.84
)

// ProfileSource yields reach profiles for the car; *cache.ProfileCache
// satisfies it.
type ProfileSource interface {
	Get(car core.CarState, a carpredict.Assumption) *reach.Profile
}

// PathSource yields the current ball path; *physics.Predictor satisfies it.
type PathSource interface {
	Path(ball core.BallState) (*physics.BallPath, bool)
}

// InterceptStep drives to the earliest point the car can reach the ball and
// strikes it in the direction the kick strategy picks. It completes when no
// intercept exists, when the ball slips away, or once the strike is done.
type InterceptStep struct {
	plan.NestedPlan

	kick     strategy.KickStrategy
	profiles ProfileSource
	paths    PathSource

	assume func(core.CarState) carpredict.Assumption

	original *intercept.Intercept
	latest   *intercept.Intercept
	struck   bool
}

func NewInterceptStep(kick strategy.KickStrategy, profiles ProfileSource, paths PathSource) *InterceptStep {
	return &InterceptStep{kick: kick, profiles: profiles, paths: paths}
}

// WithAssumption replaces how the step models the car's acceleration. The
// default spends whatever boost the car has.
func (s *InterceptStep) WithAssumption(fn func(core.CarState) carpredict.Assumption) *InterceptStep {
	s.assume = fn
	return s
}

func (s *InterceptStep) Begin() {}

// Latest returns the intercept chased on the most recent tick.
func (s *InterceptStep) Latest() (intercept.Intercept, bool) {
	if s.latest == nil {
		return intercept.Intercept{}, false
	}
	return *s.latest, true
}

func (s *InterceptStep) Output(in *core.Snapshot) (core.ControlOutput, bool) {
	if out, ok := s.ActiveOutput(in); ok {
		return out, true
	}
	if s.struck {
		return core.ControlOutput{}, false
	}

	car, ok := in.MyCar()
	if !ok || !car.HasWheelContact {
		return core.ControlOutput{}, false
	}

	path, _ := s.paths.Path(in.Ball)
	assumption := carpredict.Assumption{BoostBudget: car.Boost}
	if s.assume != nil {
		assumption = s.assume(car)
	}
	profile := s.profiles.Get(car, assumption)

	kick := s.kick.KickDirection(in).Flatten()
	if kick.IsZero() {
		kick = strategy.EnemyGoalDirection(in.Team, in.Ball.Position).Flatten()
	}

	ic, ok := intercept.Find(car, path, profile, intercept.Options{
		Modifier: kick.ScaledToMagnitude(-contactOffset).ToVector3(),
		Accept: func(_ core.CarState, target vmath.Vector3, _ core.GameTime) bool {
			return target.Z <= intercept.NeedsAerialHeight
		},
		Strike: strikeFor,
	})
	if !ok {
		slog.Debug("no intercept", "player", car.PlayerIndex, "team", car.Team)
		return core.ControlOutput{}, false
	}

	if s.original == nil {
		s.original = &ic
	} else if ic.Time.Sub(s.original.Time) > maxSlip {
		slog.Debug("intercept slipped away", "player", car.PlayerIndex, "slip", ic.Time.Sub(s.original.Time))
		return core.ControlOutput{}, false
	}
	s.latest = &ic

	remaining := ic.Time.Sub(car.Time)
	aligned := math.Abs(planning.CorrectionAngle(car, ic.Position.Flatten())) < launchAngle
	if aligned && remaining <= launchLead(ic.Strike) {
		s.struck = true
		slog.Debug("striking", "player", car.PlayerIndex, "style", ic.Strike.Style, "remaining", remaining)
		if out, ok := s.StartPlan(strikePlan(ic), in); ok {
			return out, true
		}
		return core.ControlOutput{}, false
	}

	return planning.GetThereOnTime(car, ic.Position.Flatten(), ic.Time), true
}

func (s *InterceptStep) BlindlyComplete() bool { return false }

func (s *InterceptStep) Situation() string {
	if sub := s.SubSituation(); sub != "" {
		return "Striking (" + sub + ")"
	}
	if s.latest == nil {
		return "Looking for intercept"
	}
	return fmt.Sprintf("Intercepting %s at %s", s.latest.Strike.Style, s.latest.Position)
}

func strikeFor(target vmath.Vector3) reach.StrikeProfile {
	if target.Z <= flipHeight {
		return reach.StrikeFlip
	}
	return reach.StrikeJumpHit
}

func launchLead(strike reach.StrikeProfile) time.Duration {
	return core.DurationOf(strike.TravelDelay + strike.DodgeSeconds)
}

func strikePlan(ic intercept.Intercept) *plan.Plan {
	if ic.Strike.Style == reach.StrikeJumpHit.Style {
		return steps.JumpHit(jumpHang(ic.Position.Z))
	}
	return steps.FrontFlip()
}

// jumpHang is how long to hold jump to rise to height, capped at the
// strike's lead time.
func jumpHang(height float64) time.Duration {
	rise := math.Max(0, height-physics.BallRadius)
	return core.DurationOf(math.Min(rise/jumpSpeed, reach.StrikeJumpHit.TravelDelay))
}
