package hostio

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikerbot/planner/pkg/core"
)

func TestControlVector_Encoding(t *testing.T) {
	out := core.ControlOutput{Throttle: 2, Steer: -0.5, Jump: true, Handbrake: true}

	v := NewControlVector(out)

	assert.Equal(t, ControlVector{1, -0.5, 0, 0, 0, 1, 0, 1}, v)
	assert.Equal(t, out.Clamped(), v.Output())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,-0.5,0,0,0,1,0,1]`, string(raw))
}

func TestReader_Next(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"tick","payload":{"time":1.5,"frame":90}}`,
		``,
		`not json`,
		`{"payload":{}}`,
		`{"type":"reset"}`,
	}, "\n")
	r := NewReader(strings.NewReader(in))

	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeTick, e.Type)
	var tick TickPayload
	require.NoError(t, json.Unmarshal(e.Payload, &tick))
	assert.Equal(t, 1.5, tick.Time)
	assert.Equal(t, int64(90), tick.Frame)

	_, err = r.Next()
	assert.ErrorContains(t, err, "line 3")
	assert.ErrorIs(t, err, ErrMalformedLine)

	_, err = r.Next()
	assert.ErrorContains(t, err, "missing type")

	e, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeReset, e.Type)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriter_Lines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteOutput(NewControlVector(core.ControlOutput{Throttle: 1})))
	require.NoError(t, w.WriteAck(TypeRecord, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"output","payload":[1,0,0,0,0,0,0,0]}`, lines[0])
	assert.JSONEq(t, `{"type":"ack","payload":{"type":"ack","for":"record"}}`, lines[1])

	r := NewReader(&buf)
	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeOutput, e.Type)
}
