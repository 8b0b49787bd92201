package reactive

import (
	"runtime"
	"sync"
)

// Goroutine-local target tracking. Reads are attributed to the watcher on
// top of the current goroutine's target stack; each goroutine has its own
// stack so evaluation never observes another goroutine's reads.

var targetStack sync.Map // goroutine ID -> *targetEntry

// targetEntry is a stack frame for nested evaluations (a lazy watcher may
// evaluate inside a render watcher). A nil watcher suppresses collection.
type targetEntry struct {
	watcher *Watcher
	prev    *targetEntry
}

// goroutineID returns the current goroutine ID.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// Parse "goroutine N [..."
	var id uint64
	inNumber := false
	for i := 0; i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			inNumber = true
			id = id*10 + uint64(buf[i]-'0')
		} else if inNumber {
			break
		}
	}
	if id == 0 {
		id = uint64(runtime.NumGoroutine())
	}
	return id
}

// currentTarget returns the watcher whose reads are being recorded, or nil.
func currentTarget() *Watcher {
	if v, ok := targetStack.Load(goroutineID()); ok {
		if entry, ok := v.(*targetEntry); ok && entry != nil {
			return entry.watcher
		}
	}
	return nil
}

// PushTarget makes w the current collection target. Pushing nil suppresses
// collection until the matching PopTarget; pairs must balance.
func PushTarget(w *Watcher) {
	gid := goroutineID()
	var prev *targetEntry
	if v, ok := targetStack.Load(gid); ok {
		prev, _ = v.(*targetEntry)
	}
	targetStack.Store(gid, &targetEntry{watcher: w, prev: prev})
}

// PopTarget restores the previous target, possibly none.
func PopTarget() {
	gid := goroutineID()
	if v, ok := targetStack.Load(gid); ok {
		if entry, ok := v.(*targetEntry); ok && entry != nil {
			if entry.prev != nil {
				targetStack.Store(gid, entry.prev)
			} else {
				targetStack.Delete(gid)
			}
		}
	}
}

// Untrack runs a function without dependency tracking.
func Untrack[T any](fn func() T) T {
	PushTarget(nil)
	defer PopTarget()
	return fn()
}

// UntrackVoid is like Untrack but for functions that don't return a value.
func UntrackVoid(fn func()) {
	Untrack(func() any {
		fn()
		return nil
	})
}
