package telemetry

import (
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/world"
)

// LifetimeStats tracks one built cell over its lifetime.
type LifetimeStats struct {
	Kind      components.TileKind
	BuiltTurn int
	Shifts    int
}

// LifetimeTracker follows cells from the turn they are built until they die
// or are deconstructed. Cells seeded with the world are not tracked.
type LifetimeTracker struct {
	stats map[components.Vec]*LifetimeStats

	// Lifespans of cells that ended since the last Drain
	ended []int
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[components.Vec]*LifetimeStats),
	}
}

// Observe updates tracked cells from a world event.
func (lt *LifetimeTracker) Observe(e world.Event) {
	switch e.Kind {
	case world.EventBuild:
		// A build over a cell replaces it without a death
		lt.stats[e.Pos] = &LifetimeStats{Kind: e.Tile, BuiltTurn: e.Turn}
	case world.EventMature:
		if s := lt.stats[e.Pos]; s != nil {
			s.Kind = e.Tile
		}
	case world.EventShift:
		from := e.Pos.Add(components.North)
		if s := lt.stats[from]; s != nil {
			s.Shifts++
			delete(lt.stats, from)
			lt.stats[e.Pos] = s
		}
	case world.EventDeath, world.EventDeconstruct:
		if s := lt.Remove(e.Pos); s != nil {
			lt.ended = append(lt.ended, e.Turn-s.BuiltTurn)
		}
	}
}

// Get returns the lifetime stats for the cell at pos, or nil if untracked.
func (lt *LifetimeTracker) Get(pos components.Vec) *LifetimeStats {
	return lt.stats[pos]
}

// Remove removes a cell's stats and returns them.
func (lt *LifetimeTracker) Remove(pos components.Vec) *LifetimeStats {
	s := lt.stats[pos]
	delete(lt.stats, pos)
	return s
}

// Tracked returns the number of cells currently followed.
func (lt *LifetimeTracker) Tracked() int {
	return len(lt.stats)
}

// Drain returns the mean and maximum lifespan in turns of cells that ended
// since the previous call, then forgets them.
func (lt *LifetimeTracker) Drain() (mean float64, longest int) {
	if len(lt.ended) == 0 {
		return 0, 0
	}
	var sum int
	for _, span := range lt.ended {
		sum += span
		if span > longest {
			longest = span
		}
	}
	mean = float64(sum) / float64(len(lt.ended))
	lt.ended = lt.ended[:0]
	return mean, longest
}
