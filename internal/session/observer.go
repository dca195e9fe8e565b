package session

import (
	"sync"

	"github.com/leadscout/leadscout/internal/events"
)

// Observer receives session events in order. OnEvent runs on the goroutine
// driving the search, outside the session lock, so it may call back into
// the session's read accessors.
type Observer interface {
	OnEvent(ev *events.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev *events.Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ev *events.Event) { f(ev) }

// Recorder is an Observer that keeps every event. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

// OnEvent implements Observer.
func (r *Recorder) OnEvent(ev *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns the recorded events.
func (r *Recorder) Events() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Transitions returns the recorded state changes as "from->to" strings.
func (r *Recorder) Transitions() []string {
	var out []string
	for _, ev := range r.Events() {
		if ev.Type != events.EventTypeStateChange {
			continue
		}
		data, err := ev.GetStateChangeData()
		if err != nil {
			continue
		}
		out = append(out, data.From+"->"+data.To)
	}
	return out
}
