package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every normalized event it receives. Useful in tests and
// for dry runs that report what a pass would publish.
type CaptureHook struct {
	Events []Event
	// Err is returned from every Notify call after the event is recorded.
	Err error
	mu  sync.Mutex
}

// Notify records the event and returns Err.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Verbs returns the recorded verbs in order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.Events))
	for i, event := range h.Events {
		out[i] = event.Verb
	}
	return out
}

// Objects returns the object ids touched in scene with verb, in order.
func (h *CaptureHook) Objects(scene, verb string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, event := range h.Events {
		if event.Scene == scene && event.Verb == verb {
			out = append(out, event.ObjectID)
		}
	}
	return out
}

// Reset drops the recorded events.
func (h *CaptureHook) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = nil
}
