package world

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/inventory"
)

// stepEnergy applies decay, feeding and peer equalization, then replaces the
// cell with a dead cell if its energy ran out. Returns false if it died.
func (w *World) stepEnergy(t Tile) bool {
	cfg := w.cfg.Cell
	c := t.Cell()

	decay := cfg.Decay
	if t.Kind() == components.KindTransport {
		decay *= 2
	}
	c.Energy = math.Max(0, c.Energy-decay)

	w.feed(t, c)
	w.equalize(t, c)

	if c.Energy <= 0 {
		w.die(t)
		return false
	}
	return true
}

// feed eats sugar from the cell's own ledger, then from neighboring
// conductive cells, until energy is full or no sugar is left in reach.
func (w *World) feed(t Tile, c *components.Cell) {
	cfg := w.cfg.Cell
	if c.Energy >= cfg.EnergyMax {
		return
	}

	eat := func(inv *inventory.Inventory) bool {
		need := (cfg.EnergyMax - c.Energy) / cfg.EnergyPerSugar
		take := math.Min(need, inv.Sugar())
		if take > 0 {
			inv.Change(0, -take)
			c.Energy = math.Min(cfg.EnergyMax, c.Energy+take*cfg.EnergyPerSugar)
		}
		return c.Energy >= cfg.EnergyMax
	}

	if inv := t.Inventory(); inv != nil && t.Kind() != components.KindFruit {
		if eat(inv) {
			return
		}
	}
	for _, n := range w.fixedNeighbors(t.Pos()) {
		if !n.Tile.Kind().IsConductive() {
			continue
		}
		if eat(n.Tile.Inventory()) {
			return
		}
	}
}

// equalize passes a share of the energy gap to each hungrier neighbor cell.
// A transfer that would leave either side outside [0, max] is a logic error.
func (w *World) equalize(t Tile, c *components.Cell) {
	maxEnergy := w.cfg.Cell.EnergyMax
	fraction := w.cfg.Cell.EqualizeFraction

	for _, n := range w.TileNeighbors(t.Pos()) {
		if !n.Tile.Kind().IsCell() {
			continue
		}
		other := n.Tile.Cell()
		if other.Energy >= c.Energy {
			continue
		}
		amount := (c.Energy - other.Energy) * fraction
		if c.Energy-amount < 0 || other.Energy+amount > maxEnergy {
			panic(fmt.Sprintf("world: energy transfer %.6f from %s (%.6f) to %s (%.6f) leaves [0, %.0f]",
				amount, t, c.Energy, n.Tile, other.Energy, maxEnergy))
		}
		c.Energy -= amount
		other.Energy += amount
	}
}

// die replaces the cell with a dead cell at the same position.
func (w *World) die(t Tile) {
	pos, kind := t.Pos(), t.Kind()
	w.SetTileAt(pos, w.NewTile(components.KindDeadCell, pos))
	w.emit(Event{Kind: EventDeath, Tile: kind, Pos: pos})
}
