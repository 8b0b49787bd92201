package reactive

import (
	"sort"
	"sync"
	"sync/atomic"
)

var depCounter atomic.Uint64

// Dep is an observable atom: an identity plus the watchers subscribed to
// it. Every reactive property owns one, and every observed container owns
// one more for shape changes.
type Dep struct {
	id   uint64
	mu   sync.Mutex
	subs []*Watcher // insertion-ordered; the watcher enforces uniqueness
}

func newDep() *Dep {
	return &Dep{id: depCounter.Add(1)}
}

// ID returns the process-unique, monotonically assigned identity.
func (d *Dep) ID() uint64 {
	return d.id
}

// AddSub appends a subscriber.
func (d *Dep) AddSub(w *Watcher) {
	d.mu.Lock()
	d.subs = append(d.subs, w)
	d.mu.Unlock()
}

// RemoveSub drops a subscriber. O(n) over the subscriber list.
func (d *Dep) RemoveSub(w *Watcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subs {
		if sub == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend records this dep against the current target, if any. It is the
// watcher that decides whether the edge is new.
func (d *Dep) Depend() {
	if w := currentTarget(); w != nil {
		w.addDep(d)
	}
}

// Notify wakes every subscriber. Iteration runs over a snapshot, so
// subscribers removed by a peer's callback still receive this round.
func (d *Dep) Notify() {
	d.mu.Lock()
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	if !Config.Async {
		// In synchronous mode each enqueue drains on the spot, so the
		// scheduler's sort never sees these peers together; deliver in
		// creation order here to keep flushes deterministic.
		sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	}
	for _, sub := range subs {
		sub.Update()
	}
}

// subCount is a test hook.
func (d *Dep) subCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}
