package reactive

import (
	"sync"
	"testing"
	"time"
)

// useSyncMode switches the scheduler into deterministic synchronous mode
// for the duration of a test.
func useSyncMode(t *testing.T) {
	t.Helper()
	prev := Config.Async
	Config.Async = false
	resetScheduler()
	t.Cleanup(func() {
		Config.Async = prev
		resetScheduler()
	})
}

// useAsyncMode forces tick-batched flushing for the duration of a test.
func useAsyncMode(t *testing.T) {
	t.Helper()
	prev := Config.Async
	Config.Async = true
	resetScheduler()
	t.Cleanup(func() {
		Config.Async = prev
		resetScheduler()
	})
}

// waitTick blocks until everything scheduled before the call has drained.
func waitTick(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	NextTick(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick did not drain within 2s")
	}
}

// holdTick blocks tick draining until the returned release func runs, so
// a test can issue several mutations as one batch the way a single
// synchronous turn would.
func holdTick(t *testing.T) func() {
	t.Helper()
	gate := make(chan struct{})
	NextTick(func() { <-gate })
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return release
}

// captureWarnings replaces the warn sink and returns a pointer to the
// collected messages.
func captureWarnings(t *testing.T) *[]string {
	t.Helper()
	var msgs []string
	prev := WarnHandler
	WarnHandler = func(msg string, vm any) {
		msgs = append(msgs, msg)
	}
	t.Cleanup(func() { WarnHandler = prev })
	return &msgs
}

// testHost implements Host and RenderHost.
type testHost struct {
	watchers      []*Watcher
	renderWatcher *Watcher
	destroying    bool
}

func (h *testHost) AddWatcher(w *Watcher) {
	h.watchers = append(h.watchers, w)
}

func (h *testHost) RemoveWatcher(w *Watcher) {
	for i, other := range h.watchers {
		if other == w {
			h.watchers = append(h.watchers[:i], h.watchers[i+1:]...)
			return
		}
	}
}

func (h *testHost) BeingDestroyed() bool {
	return h.destroying
}

func (h *testHost) SetRenderWatcher(w *Watcher) {
	h.renderWatcher = w
}
