package reactive

import (
	"fmt"
	"sync/atomic"
)

var watcherCounter atomic.Uint64

// WatcherOptions configures watcher behaviour.
type WatcherOptions struct {
	// Deep traverses the evaluated value so every reachable property
	// becomes a dependency.
	Deep bool
	// User marks watchers whose getter and callback came from user code;
	// their panics are routed to the error handler instead of propagating.
	User bool
	// Lazy defers evaluation until the cached value is requested; used for
	// memoized derived values.
	Lazy bool
	// Sync runs the watcher during notification instead of queueing it.
	Sync bool
	// Before runs just before the watcher re-runs in a flush, whether or
	// not the callback then fires.
	Before func()
}

// Host is implemented by hosts that keep a watcher registry, so teardown
// can unlink watchers from their owner.
type Host interface {
	AddWatcher(*Watcher)
	RemoveWatcher(*Watcher)
	BeingDestroyed() bool
}

// RenderHost additionally caches its render watcher.
type RenderHost interface {
	SetRenderWatcher(*Watcher)
}

// Watcher evaluates an expression over observed data, records which deps
// it touched, and reacts when any of them fire. Two dep generations are
// kept: deps from the previous evaluation, newDeps accumulating during the
// current one; the swap after each evaluation is what sheds branches not
// taken this round.
type Watcher struct {
	id         uint64
	vm         any
	expression string
	getter     func(vm any) any
	cb         func(newVal, oldVal any)
	value      any

	deep   bool
	user   bool
	lazy   bool
	sync   bool
	dirty  bool
	active bool
	before func()

	deps      []*Dep
	newDeps   []*Dep
	depIDs    map[uint64]struct{}
	newDepIDs map[uint64]struct{}
}

// NewWatcher builds a watcher over expression expr, which is either a
// func(vm any) any or a dot-delimited path string resolved against vm.
// Non-lazy watchers evaluate immediately.
func NewWatcher(vm any, expr any, cb func(newVal, oldVal any), opts WatcherOptions, isRenderWatcher bool) *Watcher {
	w := &Watcher{
		id:        watcherCounter.Add(1),
		vm:        vm,
		cb:        cb,
		deep:      opts.Deep,
		user:      opts.User,
		lazy:      opts.Lazy,
		sync:      opts.Sync,
		before:    opts.Before,
		dirty:     opts.Lazy,
		active:    true,
		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
	}
	if isRenderWatcher {
		if h, ok := vm.(RenderHost); ok {
			h.SetRenderWatcher(w)
		}
	}
	if h, ok := vm.(Host); ok {
		h.AddWatcher(w)
	}

	switch g := expr.(type) {
	case func(vm any) any:
		w.getter = g
		w.expression = "function()"
	case string:
		w.expression = g
		w.getter = parsePath(g)
		if w.getter == nil {
			w.getter = func(any) any { return nil }
			warn(fmt.Sprintf("failed watching path: %q; watchers only accept simple dot-delimited paths", g), vm)
		}
	default:
		w.getter = func(any) any { return nil }
		warn(fmt.Sprintf("unsupported watch expression of type %T", expr), vm)
	}

	if !w.lazy {
		w.value = w.get()
	}
	return w
}

// ID returns the creation-ordered identity used for scheduling.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Expression returns the watched expression, for diagnostics.
func (w *Watcher) Expression() string {
	return w.expression
}

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool {
	return w.active
}

// Dirty reports whether a lazy watcher's cached value is stale.
func (w *Watcher) Dirty() bool {
	return w.dirty
}

// Value returns the most recent evaluation result.
func (w *Watcher) Value() any {
	return w.value
}

// get evaluates the getter with this watcher as the collection target.
// Bookkeeping — popping the target and shedding stale deps — runs on every
// exit path, including a propagating panic.
func (w *Watcher) get() any {
	PushTarget(w)
	defer func() {
		PopTarget()
		w.cleanupDeps()
	}()

	var value any
	if w.user {
		func() {
			defer func() {
				if r := recover(); r != nil {
					handleError(r, w.vm, fmt.Sprintf("getter for watcher %q", w.expression))
				}
			}()
			value = w.getter(w.vm)
		}()
	} else {
		value = w.getter(w.vm)
	}

	if w.deep {
		traverse(value)
	}
	return value
}

// addDep records a dep touched during the current evaluation. Membership
// in the previous generation decides whether the reverse edge already
// exists, so a dep never holds the same watcher twice.
func (w *Watcher) addDep(dep *Dep) {
	if _, ok := w.newDepIDs[dep.id]; ok {
		return
	}
	w.newDepIDs[dep.id] = struct{}{}
	w.newDeps = append(w.newDeps, dep)
	if _, ok := w.depIDs[dep.id]; !ok {
		dep.AddSub(w)
	}
}

// cleanupDeps unsubscribes from deps not touched this evaluation and
// promotes the new generation.
func (w *Watcher) cleanupDeps() {
	for _, dep := range w.deps {
		if _, ok := w.newDepIDs[dep.id]; !ok {
			dep.RemoveSub(w)
		}
	}
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	for id := range w.newDepIDs {
		delete(w.newDepIDs, id)
	}
}

// Update is the change notification. Lazy watchers go stale, sync
// watchers run during notification, everything else is queued. The
// relative order of a sync watcher and queued peers therefore follows
// notification call order, not id order.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		w.run()
	default:
		QueueWatcher(w)
	}
}

// run re-evaluates and fires the callback when the value changed, when the
// value is a reference (it may have been mutated in place), or when the
// watcher is deep.
func (w *Watcher) run() {
	if !w.active {
		return
	}
	value := w.get()
	if !sameValue(value, w.value) || isReference(value) || w.deep {
		oldValue := w.value
		w.value = value
		if w.cb == nil {
			return
		}
		if w.user {
			func() {
				defer func() {
					if r := recover(); r != nil {
						handleError(r, w.vm, fmt.Sprintf("callback for watcher %q", w.expression))
					}
				}()
				w.cb(value, oldValue)
			}()
		} else {
			w.cb(value, oldValue)
		}
	}
}

// Evaluate computes a lazy watcher's value and clears the stale flag.
func (w *Watcher) Evaluate() {
	w.value = w.get()
	w.dirty = false
}

// Depend records every dep this watcher holds against the current target.
// This is how a derived value's consumer transitively subscribes to the
// derived value's inputs while the derived value stays memoized.
func (w *Watcher) Depend() {
	for _, dep := range w.deps {
		dep.Depend()
	}
}

// Teardown removes the watcher from every dep's subscriber list and from
// its host (unless the host is being destroyed), and deactivates it. A
// torn-down watcher still sitting in the
// scheduler queue is skipped there.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	if h, ok := w.vm.(Host); ok && !h.BeingDestroyed() {
		h.RemoveWatcher(w)
	}
	for _, dep := range w.deps {
		dep.RemoveSub(w)
	}
	w.active = false
}

// depCount is a test hook.
func (w *Watcher) depCount() int {
	return len(w.deps)
}

// hasDep is a test hook.
func (w *Watcher) hasDep(d *Dep) bool {
	_, ok := w.depIDs[d.id]
	return ok
}
