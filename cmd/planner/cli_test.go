package main

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/internal/config"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/tuning"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

func writeRecordingFile(t *testing.T, compress bool) string {
	t.Helper()
	ball := core.BallState{BodyState: core.BodyState{
		Position: vmath.V3(0, 0, 600),
		Velocity: vmath.V3(500, 200, 300),
	}}
	path := physics.Simulate(ball, time.Second, physics.DefaultStep)

	var samples []core.BodyState
	for _, s := range path.Slices() {
		samples = append(samples, s.BodyState)
	}
	ballRec := tuning.RecordFromTrajectory(core.Trajectory{
		Kind:        core.TrajectoryBall,
		Label:       "lob",
		PlayerIndex: core.BallPlayerIndex,
		Samples:     samples,
	})
	errRec := tuning.RecordFromErrors("lob", []core.PredictionError{
		{MadeAt: core.GameTimeFromSeconds(0), PredictedMoment: core.GameTimeFromSeconds(1), Distance: 2},
		{MadeAt: core.GameTimeFromSeconds(0.5), PredictedMoment: core.GameTimeFromSeconds(1), Distance: 6},
	})

	var buf bytes.Buffer
	require.NoError(t, tuning.WriteRecord(&buf, ballRec))
	buf.WriteString("not a record\n")
	require.NoError(t, tuning.WriteRecord(&buf, errRec))

	name := "lob.jsonl"
	data := buf.Bytes()
	if compress {
		name += ".gz"
		var gz bytes.Buffer
		w := gzip.NewWriter(&gz)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		data = gz.Bytes()
	}
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, data, 0644))
	return file
}

func TestRunCompare(t *testing.T) {
	for _, compress := range []bool{false, true} {
		file := writeRecordingFile(t, compress)

		var stdout, stderr bytes.Buffer
		code := runCompare([]string{file}, &stdout, &stderr)

		assert.Equal(t, 0, code)
		out := stdout.String()
		assert.Regexp(t, `lob: \d+ samples over`, out)
		assert.Contains(t, out, "lob: 2 predictions, mean error 4.00, max 6.00 at lookahead 500ms")
		assert.Contains(t, out, "1 skipped")
		assert.Contains(t, stderr.String(), "line 2")
	}
}

func TestRunCompare_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, runCompare(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")
}

func TestRunCompare_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, runCompare([]string{filepath.Join(t.TempDir(), "nope.jsonl")}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}

func TestBotConfig(t *testing.T) {
	cfg := botConfig(config.PlannerConfig{
		BallHorizon:        2 * time.Second,
		SimStep:            10 * time.Millisecond,
		CarHorizon:         3 * time.Second,
		FlipCutoffDistance: 1500,
	})

	assert.Equal(t, 2*time.Second, cfg.Predictor.Horizon)
	assert.Equal(t, 10*time.Millisecond, cfg.Predictor.Step)
	assert.Equal(t, 2*time.Second, cfg.Predictor.MinRemaining)
	assert.Equal(t, 3*time.Second, cfg.CarHorizon)
	assert.Equal(t, 1500.0, cfg.FlipCutoffDistance)
	// unset values keep the defaults
	assert.Equal(t, time.Second, cfg.PredictionLookahead)
	assert.Equal(t, 100.0, cfg.BoostAssumption)
}

func TestHTTPToWS(t *testing.T) {
	assert.Equal(t, "wss://dash.example.com", httpToWS("https://dash.example.com/"))
	assert.Equal(t, "ws://localhost:5000", httpToWS("http://localhost:5000"))
}
