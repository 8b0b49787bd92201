package reactive

import (
	"github.com/mira-framework/mira/internal/logger"
)

// WarnHandler receives diagnostics for invalid API use: reactive writes to
// primitives, runtime root-data additions, runaway update loops. Invalid
// uses never panic; they warn and fall through to the nearest safe
// behaviour. Collaborators may replace the sink.
var WarnHandler = func(msg string, vm any) {
	if vm != nil {
		logger.Warn(logger.TagMira, "%s (context: %T)", msg, vm)
		return
	}
	logger.Warn(logger.TagMira, "%s", msg)
}

// ErrorHandler receives panics recovered from user-supplied getters and
// callbacks. When nil, recovered values are logged and swallowed.
var ErrorHandler func(err any, vm any, info string)

func warn(msg string, vm any) {
	if WarnHandler != nil {
		WarnHandler(msg, vm)
	}
}

func handleError(err any, vm any, info string) {
	if ErrorHandler != nil {
		ErrorHandler(err, vm, info)
		return
	}
	logger.Error(logger.TagWatcher, "recovered %q: %v", info, err)
}
