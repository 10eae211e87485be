package world

import (
	"math"

	"github.com/pthm-cable/sprout/components"
)

// droopThreshold is the sag past which a cell drops a full row.
const droopThreshold = 0.5

var (
	below   = [...]Vec{components.South, components.SouthWest, components.SouthEast}
	springs = [...]Vec{components.West, components.East, components.NorthWest, components.North, components.NorthEast}
)

// stepDroop accrues structural sag and resolves it against support:
// ground below pins the cell, a cell below lends its own droop, otherwise
// the cell averages with the cells around and above it, or falls freely
// when it has none.
func (w *World) stepDroop(t Tile) {
	cfg := w.cfg.Cell
	c := t.Cell()
	pos := t.Pos()

	accrual := cfg.Droop
	if c.Energy < cfg.LowEnergyFraction*cfg.EnergyMax {
		accrual *= 2
	}
	c.DroopY += accrual

	grounded := false
	hanging := math.Inf(1)
	for _, d := range below {
		n, ok := w.tileAt(pos.Add(d))
		if !ok {
			continue
		}
		if n.Kind().IsGround() {
			grounded = true
			break
		}
		if n.Kind().IsCell() {
			hanging = math.Min(hanging, n.DroopY())
		}
	}

	switch {
	case grounded:
		c.DroopY = math.Min(c.DroopY, 0)
	case !math.IsInf(hanging, 1):
		c.DroopY = math.Min(c.DroopY, hanging)
	default:
		sum, count := c.DroopY, 1
		for _, d := range springs {
			if n, ok := w.tileAt(pos.Add(d)); ok && n.Kind().IsCell() {
				sum += n.DroopY()
				count++
			}
		}
		if count == 1 {
			c.DroopY++
		} else {
			c.DroopY = sum / float64(count)
		}
	}

	if c.DroopY <= droopThreshold {
		return
	}
	// The bottom row and an occupied slot below both block the drop.
	if dest := pos.Add(components.South); w.InBounds(dest) && !w.occupied[w.index(dest)] {
		c.DroopY--
		w.shiftDown(t)
	}
}

// shiftDown moves a cell one row down, uncovering the environment tile it
// stood on. A player standing on the cell rides along.
func (w *World) shiftDown(t Tile) {
	from := t.Pos()
	to := from.Add(components.South)

	cell, ok := w.MaybeRemoveCellAt(from)
	if !ok || cell.Entity != t.Entity {
		return
	}
	w.SetTileAt(to, cell)
	if w.player.Pos == from {
		w.player.Pos = to
	}
	w.emit(Event{Kind: EventShift, Tile: t.Kind(), Pos: to})
}
