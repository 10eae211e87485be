// Package game runs headless sessions: it owns the world, feeds it actions
// from a controller and routes what happens to telemetry and metrics.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sprout/autoplay"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/metrics"
	"github.com/pthm-cable/sprout/telemetry"
	"github.com/pthm-cable/sprout/world"
)

// Game holds one session.
type Game struct {
	cfg        *config.Config
	world      *world.World
	controller autoplay.Controller
	maxTurns   int
	outcome    world.Outcome

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	marks         []telemetry.Bookmark
	turnLog       *telemetry.TurnLog
	metrics       *metrics.Metrics
	statsCallback func(telemetry.WindowStats)
	logStats      bool
}

// NewGameWithOptions creates a session and opens its outputs. Close must be
// called to flush them.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	cfg = cfg.Clone()
	if opts.Seed != 0 {
		cfg.World.Seed = opts.Seed
	}

	g := &Game{
		cfg:           cfg,
		world:         world.New(cfg),
		controller:    opts.Controller,
		maxTurns:      opts.MaxTurns,
		collector:     telemetry.NewCollector(cfg.Telemetry.WindowTurns),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		metrics:       opts.Metrics,
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
	}
	if g.controller == nil {
		g.controller = autoplay.NewGrower(autoplay.DefaultStemHeight, autoplay.DefaultRoots)
	}

	g.world.SetProfiler(g.perfCollector)
	g.world.OnEvent(g.collector.Observe)
	if g.metrics != nil {
		g.world.OnEvent(g.metrics.ObserveEvent)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing run config: %w", err)
	}

	if opts.TurnLogPath != "" {
		tl, err := telemetry.NewTurnLog(opts.TurnLogPath)
		if err != nil {
			om.Close()
			return nil, err
		}
		g.turnLog = tl
		g.world.OnEvent(tl.Observe)
	}

	return g, nil
}

// World returns the simulated world.
func (g *Game) World() *world.World { return g.world }

// Turn returns the number of completed turns.
func (g *Game) Turn() int { return g.world.Time() }

// Outcome returns the result as of the last completed turn.
func (g *Game) Outcome() world.Outcome { return g.outcome }

// Bookmarks returns the bookmarks triggered so far.
func (g *Game) Bookmarks() []telemetry.Bookmark { return g.marks }

// Step plays one turn and returns the outcome after it.
func (g *Game) Step() world.Outcome {
	if a := g.controller.Next(g.world); a != nil {
		g.world.Player().SetAction(a)
	}
	g.world.Step()

	if g.turnLog != nil {
		if err := g.turnLog.WriteTurn(g.world); err != nil {
			slog.Error("failed to write turn log", "turn", g.world.Time(), "error", err)
		}
	}
	if g.metrics != nil {
		g.metrics.Observe(g.world)
	}
	g.flushTelemetry(false)

	g.outcome = g.world.CheckWinLoss()
	return g.outcome
}

// Run steps until the game is decided, MaxTurns is reached or ctx is done.
func (g *Game) Run(ctx context.Context) (world.Outcome, error) {
	for g.outcome == world.Playing {
		if g.maxTurns > 0 && g.Turn() >= g.maxTurns {
			break
		}
		if err := ctx.Err(); err != nil {
			g.flushTelemetry(true)
			return g.outcome, err
		}
		g.Step()
	}
	g.flushTelemetry(true)
	g.logWorldState()
	return g.outcome, nil
}

// Close flushes and closes every output.
func (g *Game) Close() error {
	var firstErr error
	if g.turnLog != nil {
		if err := g.turnLog.Close(); err != nil {
			firstErr = err
		}
	}
	if err := g.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
