package reactive

import (
	"github.com/caarlos0/env/v6"

	"github.com/mira-framework/mira/internal/logger"
)

// Settings holds the process-wide behaviour switches. Seeded from MIRA_*
// environment variables at init; collaborators may flip fields at runtime.
type Settings struct {
	// Async controls whether watcher wake-ups are batched across a tick
	// boundary. When false, notification delivers in watcher-id order and the
	// scheduler drains synchronously at enqueue time.
	Async bool `env:"MIRA_ASYNC" envDefault:"true"`

	// MaxUpdateCount bounds how many times a single watcher may re-enter
	// the queue during one flush before it is dropped as a runaway.
	MaxUpdateCount int `env:"MIRA_MAX_UPDATE_COUNT" envDefault:"100"`

	// ServerRendering suppresses observation entirely; server renders are
	// write-once and gain nothing from dependency tracking.
	ServerRendering bool `env:"MIRA_SSR" envDefault:"false"`
}

// Config is the live settings instance.
var Config Settings

func init() {
	if err := env.Parse(&Config); err != nil {
		logger.Error(logger.TagConfig, "environment parse failed: %v", err)
		Config = Settings{Async: true, MaxUpdateCount: 100}
	}
	if Config.MaxUpdateCount <= 0 {
		Config.MaxUpdateCount = 100
	}
}
