package logger

// Debug tags for filtering log output
const (
	// Reactivity core
	TagDep       = "DEP"
	TagObserver  = "OBSERVER"
	TagWatcher   = "WATCHER"
	TagScheduler = "SCHEDULER"

	// Public mutators and helpers
	TagMutate = "MUTATE"

	// Framework
	TagMira   = "MIRA"
	TagConfig = "CONFIG"
)
