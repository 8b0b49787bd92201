// Package mira exposes the reactivity core of the mira view framework.
// Collaborating layers (rendering, components, lifecycle) consume it by
// creating watchers over observed data and by using the public mutators.
package mira

import (
	"github.com/mira-framework/mira/internal/reactive"
)

// Re-exported core types.
type (
	Map            = reactive.Map
	Slice          = reactive.Slice
	Observer       = reactive.Observer
	Dep            = reactive.Dep
	Watcher        = reactive.Watcher
	WatcherOptions = reactive.WatcherOptions
	Host           = reactive.Host
	RenderHost     = reactive.RenderHost
	DataHost       = reactive.DataHost
	Unobservable   = reactive.Unobservable
	Component      = reactive.Component
)

// Container constructors.
var (
	NewMap     = reactive.NewMap
	NewMapFrom = reactive.NewMapFrom
	NewSlice   = reactive.NewSlice
	NewSliceOf = reactive.NewSliceOf
)

// Observation and mutation surface.
var (
	Observe        = reactive.Observe
	ObserverOf     = reactive.ObserverOf
	DefineReactive = reactive.DefineReactive
	Set            = reactive.Set
	Del            = reactive.Del
)

// Watcher and scheduler surface.
var (
	NewWatcher       = reactive.NewWatcher
	QueueWatcher     = reactive.QueueWatcher
	QueueActivated   = reactive.QueueActivated
	OnFlushUpdated   = reactive.OnFlushUpdated
	OnFlushActivated = reactive.OnFlushActivated
	NextTick         = reactive.NextTick
)

// Dependency-collection controls.
var (
	PushTarget      = reactive.PushTarget
	PopTarget       = reactive.PopTarget
	ToggleObserving = reactive.ToggleObserving
)

// Untrack runs fn without dependency tracking.
func Untrack[T any](fn func() T) T {
	return reactive.Untrack(fn)
}

// UntrackVoid runs fn without dependency tracking.
func UntrackVoid(fn func()) {
	reactive.UntrackVoid(fn)
}

// Config returns the live process-wide settings.
func Config() *reactive.Settings {
	return &reactive.Config
}
