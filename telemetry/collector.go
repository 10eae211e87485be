package telemetry

import (
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/world"
)

// Collector accumulates world events within turn windows and produces
// WindowStats.
type Collector struct {
	windowTurns int
	windowStart int
	lifetimes   *LifetimeTracker

	// Event counters for the current window
	builds        int
	deconstructs  int
	deaths        int
	shifts        int
	matures       int
	failedActions int
}

// NewCollector creates a collector that flushes every windowTurns turns.
func NewCollector(windowTurns int) *Collector {
	if windowTurns < 1 {
		windowTurns = 1
	}
	return &Collector{windowTurns: windowTurns, lifetimes: NewLifetimeTracker()}
}

// Observe counts a world event. Register it with World.OnEvent.
func (c *Collector) Observe(e world.Event) {
	c.lifetimes.Observe(e)
	switch e.Kind {
	case world.EventBuild:
		c.builds++
	case world.EventDeconstruct:
		c.deconstructs++
	case world.EventDeath:
		c.deaths++
	case world.EventShift:
		c.shifts++
	case world.EventMature:
		c.matures++
	case world.EventActionFailed:
		c.failedActions++
	}
}

// ShouldFlush returns true if enough turns have passed to flush the window.
func (c *Collector) ShouldFlush(turn int) bool {
	return turn-c.windowStart >= c.windowTurns
}

// WindowTurns returns the number of turns per window.
func (c *Collector) WindowTurns() int {
	return c.windowTurns
}

// WindowStart returns the turn the current window began at.
func (c *Collector) WindowStart() int {
	return c.windowStart
}

// Flush samples w, produces a WindowStats and resets counters for the next
// window.
func (c *Collector) Flush(w *world.World) WindowStats {
	turn := w.Time()
	counts := w.CountCells()
	energyMean, energyStd, p10, p50, p90 := ComputeEnergyStats(w.CellEnergies())
	water, sugar := w.Totals()

	var fruitSugar float64
	if fruit, ok := w.Fruit(); ok && fruit.Inventory() != nil {
		fruitSugar = fruit.Inventory().Sugar()
	}

	lifespanMean, lifespanMax := c.lifetimes.Drain()

	var cells int
	for _, n := range counts {
		cells += n
	}

	p := w.Player()
	stats := WindowStats{
		WindowStartTurn: c.windowStart,
		WindowEndTurn:   turn,
		Outcome:         w.CheckWinLoss().String(),

		Cells:     cells,
		Tissue:    counts[components.KindTissue],
		Leaves:    counts[components.KindLeaf],
		Roots:     counts[components.KindRoot],
		Transport: counts[components.KindTransport],
		Growing:   counts[components.KindGrowing],
		Fruit:     counts[components.KindFruit],

		Builds:        c.builds,
		Deconstructs:  c.deconstructs,
		Deaths:        c.deaths,
		Shifts:        c.shifts,
		Matures:       c.matures,
		FailedActions: c.failedActions,

		LifespanMean: lifespanMean,
		LifespanMax:  lifespanMax,

		EnergyMean: energyMean,
		EnergyStd:  energyStd,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		TotalWater:  water,
		TotalSugar:  sugar,
		FruitSugar:  fruitSugar,
		PlayerWater: p.Inv.Water(),
		PlayerSugar: p.Inv.Sugar(),
	}

	c.windowStart = turn
	c.builds = 0
	c.deconstructs = 0
	c.deaths = 0
	c.shifts = 0
	c.matures = 0
	c.failedActions = 0

	return stats
}
