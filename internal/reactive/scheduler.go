package reactive

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mira-framework/mira/internal/logger"
)

// Scheduler state. One queue per process; drained as a whole in a single
// flush scheduled on the next tick.
var (
	schedMu  sync.Mutex
	queue    []*Watcher
	has      = make(map[uint64]bool)
	circular = make(map[uint64]int)
	waiting  bool
	flushing bool
	index    int

	activatedWatchers []*Watcher
	updatedHooks      []func([]*Watcher)
	activatedHooks    []func([]*Watcher)
)

// QueueWatcher pushes a watcher into the flush queue. A watcher already
// queued is dropped; one queued while the queue is draining is spliced in
// at its id-sorted position among the not-yet-processed entries, so it
// runs in the same flush.
func QueueWatcher(w *Watcher) {
	schedMu.Lock()
	if has[w.id] {
		schedMu.Unlock()
		return
	}
	has[w.id] = true

	if !flushing {
		queue = append(queue, w)
	} else {
		i := len(queue) - 1
		for i > index && queue[i].id > w.id {
			i--
		}
		queue = append(queue, nil)
		copy(queue[i+2:], queue[i+1:])
		queue[i+1] = w
	}

	if !waiting {
		waiting = true
		if !Config.Async {
			schedMu.Unlock()
			flushSchedulerQueue()
			return
		}
		nextTick(flushSchedulerQueue)
	}
	schedMu.Unlock()
}

// QueueActivated records a watcher whose host was re-activated during the
// flush; the activated hooks receive the batch after the drain.
func QueueActivated(w *Watcher) {
	schedMu.Lock()
	activatedWatchers = append(activatedWatchers, w)
	schedMu.Unlock()
}

// OnFlushUpdated registers a post-flush callback receiving the watchers
// processed by the drain, in processing order.
func OnFlushUpdated(fn func([]*Watcher)) {
	schedMu.Lock()
	updatedHooks = append(updatedHooks, fn)
	schedMu.Unlock()
}

// OnFlushActivated registers a post-flush callback receiving the watchers
// queued through QueueActivated during the drain.
func OnFlushActivated(fn func([]*Watcher)) {
	schedMu.Lock()
	activatedHooks = append(activatedHooks, fn)
	schedMu.Unlock()
}

// flushSchedulerQueue drains the queue in ascending id order: parents
// before children, user watchers before the render watcher on the same
// host, and watchers torn down during a parent's update skipped. The loop
// walks by index because entries may be spliced in mid-drain.
func flushSchedulerQueue() {
	schedMu.Lock()
	flushing = true
	sort.Slice(queue, func(i, j int) bool { return queue[i].id < queue[j].id })

	for index = 0; index < len(queue); index++ {
		w := queue[index]
		delete(has, w.id)
		schedMu.Unlock()

		if w.before != nil {
			w.before()
		}
		w.run()

		schedMu.Lock()
		// A watcher that re-queued itself during its own run is on a
		// cycle; past the threshold it is dropped for this flush.
		if has[w.id] {
			circular[w.id]++
			if circular[w.id] > Config.MaxUpdateCount {
				delete(has, w.id)
				dropQueued(w)
				schedMu.Unlock()
				if w.user {
					warn(fmt.Sprintf("possible infinite update loop in watcher with expression %q", w.expression), w.vm)
				} else {
					warn("possible infinite update loop in a render function", w.vm)
				}
				schedMu.Lock()
			}
		}
	}

	flushed := make([]*Watcher, len(queue))
	copy(flushed, queue)
	activated := activatedWatchers

	queue = queue[:0]
	activatedWatchers = nil
	for id := range has {
		delete(has, id)
	}
	for id := range circular {
		delete(circular, id)
	}
	index = 0
	waiting = false
	flushing = false

	actHooks := make([]func([]*Watcher), len(activatedHooks))
	copy(actHooks, activatedHooks)
	updHooks := make([]func([]*Watcher), len(updatedHooks))
	copy(updHooks, updatedHooks)
	schedMu.Unlock()

	for _, hook := range actHooks {
		hook(activated)
	}
	for _, hook := range updHooks {
		hook(flushed)
	}
	logger.Debug(logger.TagScheduler, "flushed %d watchers", len(flushed))
}

// dropQueued removes a watcher's not-yet-processed entry. Called with
// schedMu held.
func dropQueued(w *Watcher) {
	for i := index + 1; i < len(queue); i++ {
		if queue[i] == w {
			queue = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// resetScheduler clears all scheduler state; test hook.
func resetScheduler() {
	schedMu.Lock()
	queue = nil
	activatedWatchers = nil
	updatedHooks = nil
	activatedHooks = nil
	for id := range has {
		delete(has, id)
	}
	for id := range circular {
		delete(circular, id)
	}
	index = 0
	waiting = false
	flushing = false
	schedMu.Unlock()
}
