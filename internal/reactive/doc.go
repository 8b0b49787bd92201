// Package reactive implements the reactivity core of the mira framework:
// observed data containers, fine-grained dependency collection, and a
// batched scheduler that re-runs derived computations when their inputs
// change.
//
// Data flows in two directions. On read, the watcher currently on top of
// the goroutine's target stack records every dep its getter touches. On
// write, the touched dep notifies its subscribers: lazy watchers go
// stale, sync watchers run in place, and the rest are queued and drained
// in creation order on the next tick.
//
// Containers are the library types Map and Slice. Property creation and
// removal go through Set and Del so shape changes stay observable.
package reactive
