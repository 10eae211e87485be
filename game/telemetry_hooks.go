package game

import "log/slog"

// flushTelemetry closes the current stats window when it is due. With
// force set, a partial window is flushed as well.
func (g *Game) flushTelemetry(force bool) {
	turn := g.world.Time()
	if !g.collector.ShouldFlush(turn) && !(force && g.hasPartialWindow()) {
		return
	}

	stats := g.collector.Flush(g.world)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	for _, b := range g.bookmarks.Check(stats) {
		g.marks = append(g.marks, b)
		if g.logStats {
			b.LogBookmark()
		}
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteWindow(stats); err != nil {
			slog.Error("failed to write window stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTurn); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// hasPartialWindow reports whether turns have passed since the last flush.
func (g *Game) hasPartialWindow() bool {
	return g.world.Time() > g.collector.WindowStart()
}
