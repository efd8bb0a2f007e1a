// Package prediction stores ball predictions made on earlier ticks so they can
// be checked against what actually happened.
package prediction

import (
	"errors"
	"fmt"

	"github.com/strikerbot/planner/internal/queue"
	"github.com/strikerbot/planner/pkg/core"
)

// ErrOutOfOrder is returned when an entry would break ascending order.
var ErrOutOfOrder = errors.New("prediction out of order")

// Entry is a predicted ball state for a future moment.
type Entry struct {
	PredictedMoment core.GameTime  `json:"predictedMoment"`
	Ball            core.BallState `json:"ball"`
	MadeAt          core.GameTime  `json:"madeAt"`
}

// Warehouse is a FIFO of entries sorted ascending by PredictedMoment.
// Entries are appended at the back and only ever removed from the front.
//
// One goroutine may Add while another calls TakeAtOrAfter: only the producer
// touches the back and only the consumer removes from the front.
type Warehouse struct {
	entries *queue.Queue[Entry]
}

// NewWarehouse creates an empty warehouse.
func NewWarehouse() *Warehouse {
	return &Warehouse{entries: queue.New[Entry]()}
}

// Add appends e. Entries predicting a moment earlier than the current tail are
// rejected so the warehouse stays sorted.
func (w *Warehouse) Add(e Entry) error {
	if tail, ok := w.entries.Back(); ok && e.PredictedMoment.Before(tail.PredictedMoment) {
		return fmt.Errorf("%w: %s before tail %s", ErrOutOfOrder, e.PredictedMoment, tail.PredictedMoment)
	}
	w.entries.Push(e)
	return nil
}

// TakeAtOrAfter pops entries off the front until it finds one predicting
// moment or later, and returns it. Entries earlier than moment are discarded
// along the way.
//
// This is not a read: it consumes. It assumes callers ask with non-decreasing
// moments, one query per tick. A second call with the same moment will not
// return the same entry again.
//
// If the warehouse is empty or moment precedes the front entry, nothing is
// removed and ok is false. If the warehouse runs dry while discarding, ok is
// false.
func (w *Warehouse) TakeAtOrAfter(moment core.GameTime) (Entry, bool) {
	head, ok := w.entries.Front()
	if !ok || moment.Before(head.PredictedMoment) {
		return Entry{}, false
	}

	for {
		e, ok := w.entries.Pop()
		if !ok {
			return Entry{}, false
		}
		if !e.PredictedMoment.Before(moment) {
			return e, true
		}
	}
}

// Len returns the number of stored entries.
func (w *Warehouse) Len() int { return w.entries.Len() }

// Entries returns a copy of the stored entries, earliest first.
func (w *Warehouse) Entries() []Entry { return w.entries.Items() }

// Reset drops every entry, e.g. after a kickoff when old predictions are void.
func (w *Warehouse) Reset() { w.entries.Clear() }
