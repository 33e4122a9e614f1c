package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/dvnet/state"
)

// TableEvent is published every time a node finishes handling an event
type TableEvent struct {
	Node    state.NodeId
	Event   RouterEvent
	Table   [][]state.Cost
	MinCost []state.Cost
	Time    time.Time
}

// Trace fans table events out to any number of subscribers. Publishing never blocks:
// events are dropped while the subscribers are too far behind.
type Trace struct {
	broadcast.Broadcaster
	Dropped atomic.Int64
	// mu orders Register and Unregister against Close
	mu     sync.Mutex
	closed atomic.Bool
}

func NewTrace() *Trace {
	return &Trace{
		Broadcaster: broadcast.NewBroadcaster(state.TraceBufferSize),
	}
}

func (t *Trace) Publish(ev TableEvent) {
	if t.closed.Load() {
		return
	}
	if !t.TrySubmit(ev) {
		t.Dropped.Add(1)
	}
}

// Subscribe registers a new listener. A subscriber that stops reading before it calls the returned
// cancel function only loses events, nodes are never held up.
func (t *Trace) Subscribe() (<-chan any, func()) {
	ch := make(chan any, state.TraceBufferSize)
	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	t.Register(ch)
	t.mu.Unlock()
	return ch, func() {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-ch:
				case <-done:
					return
				}
			}
		}()
		t.mu.Lock()
		if !t.closed.Load() {
			t.Unregister(ch)
		}
		t.mu.Unlock()
		close(done)
	}
}

func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Swap(true) {
		return nil
	}
	return t.Broadcaster.Close()
}
