package game

import (
	"github.com/pthm-cable/sprout/autoplay"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/metrics"
	"github.com/pthm-cable/sprout/telemetry"
)

// Options configures a headless session.
type Options struct {
	Config *config.Config // nil uses the embedded defaults
	Seed   int64          // Overrides the config seed when non-zero

	// MaxTurns stops the run when no outcome was reached; 0 runs until one is.
	MaxTurns int

	// Controller picks player actions; nil uses a default grower.
	Controller autoplay.Controller

	OutputDir     string // windows.csv, perf.csv and config.yaml; empty disables
	TurnLogPath   string // Compressed per-turn log; empty disables
	Metrics       *metrics.Metrics
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)
}
