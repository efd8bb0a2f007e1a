package hostio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// maxLineBytes bounds one tick line; a full match state is a few KB.
const maxLineBytes = 1 << 20

// ErrMalformedLine wraps errors for a single bad line. The reader can keep
// going after it.
var ErrMalformedLine = errors.New("malformed line")

// Reader reads envelopes, one JSON object per line.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: s}
}

// Next returns the next envelope. Blank lines are skipped. It returns io.EOF
// when the input ends; a malformed line returns an error but the reader can
// keep going.
func (r *Reader) Next() (Envelope, error) {
	for r.scanner.Scan() {
		r.line++
		b := r.scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var e Envelope
		if err := json.Unmarshal(b, &e); err != nil {
			return Envelope{}, fmt.Errorf("line %d: %w: %w", r.line, ErrMalformedLine, err)
		}
		if e.Type == "" {
			return Envelope{}, fmt.Errorf("line %d: %w: missing type", r.line, ErrMalformedLine)
		}
		return e, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Envelope{}, fmt.Errorf("read: %w", err)
	}
	return Envelope{}, io.EOF
}

// Writer writes envelopes as JSON lines. Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write encodes e and flushes it, so the host sees each line immediately.
func (w *Writer) Write(e Envelope) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return w.w.Flush()
}

// WriteOutput sends a control vector.
func (w *Writer) WriteOutput(v ControlVector) error {
	e, err := NewEnvelope(TypeOutput, v)
	if err != nil {
		return err
	}
	return w.Write(e)
}

// WriteAck acknowledges a message of type forType; err may be nil.
func (w *Writer) WriteAck(forType string, err error) error {
	ack := AckMessage{Type: TypeAck, For: forType}
	if err != nil {
		ack.Error = err.Error()
	}
	e, merr := NewEnvelope(TypeAck, ack)
	if merr != nil {
		return merr
	}
	return w.Write(e)
}
