// Package tuning reads persisted trajectory recordings and measures how far
// the simulator drifts from them.
package tuning

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// ErrMalformedRecord marks a recording line that cannot be used.
var ErrMalformedRecord = errors.New("malformed record")

// KindPrediction marks a record carrying prediction errors instead of samples.
const KindPrediction core.TrajectoryKind = "prediction"

const maxLineBytes = 16 * 1024 * 1024

// Sample is one trajectory point. T is game seconds.
type Sample struct {
	T float64    `json:"t"`
	P [3]float64 `json:"p"`
	V [3]float64 `json:"v"`
	S [3]float64 `json:"s"`
}

// ErrorSample is one prediction checked against the observed ball.
type ErrorSample struct {
	MadeAt    float64    `json:"madeAt"`
	Moment    float64    `json:"moment"`
	Predicted [3]float64 `json:"predicted"`
	Actual    [3]float64 `json:"actual"`
	Distance  float64    `json:"distance"`
}

// Record is one line of a recording file.
type Record struct {
	Kind        core.TrajectoryKind `json:"kind"`
	Label       string              `json:"label"`
	PlayerIndex int                 `json:"playerIndex"`
	Samples     []Sample            `json:"samples,omitempty"`
	Errors      []ErrorSample       `json:"errors,omitempty"`
}

// RecordFromTrajectory converts a finished trajectory into its file form.
func RecordFromTrajectory(t core.Trajectory) Record {
	r := Record{
		Kind:        t.Kind,
		Label:       t.Label,
		PlayerIndex: t.PlayerIndex,
		Samples:     make([]Sample, len(t.Samples)),
	}
	for i, s := range t.Samples {
		r.Samples[i] = Sample{
			T: s.Time.Seconds(),
			P: toArray(s.Position),
			V: toArray(s.Velocity),
			S: toArray(s.Spin),
		}
	}
	return r
}

// RecordFromErrors converts prediction errors into their file form.
func RecordFromErrors(label string, errs []core.PredictionError) Record {
	r := Record{
		Kind:        KindPrediction,
		Label:       label,
		PlayerIndex: core.BallPlayerIndex,
		Errors:      make([]ErrorSample, len(errs)),
	}
	for i, e := range errs {
		r.Errors[i] = ErrorSample{
			MadeAt:    e.MadeAt.Seconds(),
			Moment:    e.PredictedMoment.Seconds(),
			Predicted: toArray(e.Predicted),
			Actual:    toArray(e.Actual),
			Distance:  e.Distance,
		}
	}
	return r
}

// Validate reports why r cannot be used, wrapping ErrMalformedRecord.
func (r Record) Validate() error {
	switch r.Kind {
	case core.TrajectoryBall, core.TrajectoryCar:
		if len(r.Samples) == 0 {
			return fmt.Errorf("%w: %s record has no samples", ErrMalformedRecord, r.Kind)
		}
		for i, s := range r.Samples {
			if !finiteAll(s.T) || !finiteAll(s.P[:]...) || !finiteAll(s.V[:]...) || !finiteAll(s.S[:]...) {
				return fmt.Errorf("%w: sample %d is not finite", ErrMalformedRecord, i)
			}
			if i > 0 && s.T <= r.Samples[i-1].T {
				return fmt.Errorf("%w: sample %d at %.3fs does not follow %.3fs", ErrMalformedRecord, i, s.T, r.Samples[i-1].T)
			}
		}
	case KindPrediction:
		if len(r.Errors) == 0 {
			return fmt.Errorf("%w: prediction record has no errors", ErrMalformedRecord)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedRecord, r.Kind)
	}
	return nil
}

// States converts the samples back into body states.
func (r Record) States() []core.BodyState {
	out := make([]core.BodyState, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = core.BodyState{
			Position: fromArray(s.P),
			Velocity: fromArray(s.V),
			Spin:     fromArray(s.S),
			Time:     core.GameTimeFromSeconds(s.T),
		}
	}
	return out
}

// BallPath rebuilds the recorded path. Car records work too: the path is
// only a time-ordered list of body states.
func (r Record) BallPath() (*physics.BallPath, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Kind == KindPrediction {
		return nil, fmt.Errorf("%w: prediction record has no path", ErrMalformedRecord)
	}
	states := r.States()
	slices := make([]physics.Slice, len(states))
	for i, s := range states {
		slices[i] = physics.Slice{BodyState: s}
	}
	path, err := physics.NewBallPath(slices)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return path, nil
}

// ReadRecordings decodes one record per line. Blank lines are skipped. Lines
// that fail to decode or validate are reported in errs and skipped; reading
// continues with the next line. A read failure of the underlying reader ends
// the scan and is appended to errs.
func ReadRecordings(r io.Reader) (records []Record, errs []error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w: %v", line, ErrMalformedRecord, err))
			continue
		}
		if err := rec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("line %d: %w", line+1, err))
	}
	return records, errs
}

// WriteRecord appends r to w as a single line.
func WriteRecord(w io.Writer, r Record) error {
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("failed to encode %s record: %w", r.Kind, err)
	}
	return nil
}

func toArray(v vmath.Vector3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func fromArray(a [3]float64) vmath.Vector3 { return vmath.V3(a[0], a[1], a[2]) }

func finiteAll(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
