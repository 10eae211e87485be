package world

import (
	"math"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/inventory"
)

// stepLeaf runs photosynthesis across every opposite pair of neighbors
// with Air on one side and a conductive cell on the other. Water in the
// cell is converted to sugar at a ratio set by the CO2 of the Air side.
func (w *World) stepLeaf(t Tile) {
	leaf, _ := t.Leaf()
	leaf.TilePairs = leaf.TilePairs[:0]
	pos := t.Pos()
	rate := w.cfg.Leaf.ReactionRate

	for _, d := range components.Directions {
		air, ok := w.tileAt(pos.Add(d))
		if !ok || air.Kind() != components.KindAir {
			continue
		}
		tissue, ok := w.tileAt(pos.Sub(d))
		if !ok || !tissue.Kind().IsConductive() {
			continue
		}
		leaf.TilePairs = append(leaf.TilePairs, d)

		inv := tissue.Inventory()
		co2 := w.Co2At(air.Pos())
		ideal := 1 / co2
		chance := w.SunlightAt(air.Pos()) * rate * math.Min(1, inv.Water()/ideal)
		if w.rng.Float64() >= chance {
			continue
		}
		converted := math.Min(inv.Water(), ideal)
		inv.Change(-converted, converted*co2)
	}
}

// stepRoot pulls one unit of water from every adjacent soil tile once per
// cooldown.
func (w *World) stepRoot(t Tile) {
	root, _ := t.Root()
	root.Cooldown--
	if root.Cooldown > 0 {
		return
	}
	root.Cooldown = w.cfg.Root.Cooldown
	root.ActiveNeighbors = root.ActiveNeighbors[:0]

	inv := t.Inventory()
	for _, n := range w.TileNeighbors(t.Pos()) {
		if !isSoil(n.Tile.Kind()) {
			continue
		}
		got, err := n.Tile.Inventory().Give(inv, 1, 0)
		if err == nil && got.Water > 0 {
			root.ActiveNeighbors = append(root.ActiveNeighbors, n.Dir)
		}
	}
}

// stepFruit drains all sugar from every neighboring ledger.
func (w *World) stepFruit(t Tile) {
	for _, n := range w.TileNeighbors(t.Pos()) {
		other := n.Tile.Inventory()
		if other == nil || other.Sugar() <= 0 {
			continue
		}
		w.give(n.Tile, t, 0, other.Sugar())
	}
}

// stepTransport pushes one water and one sugar along its direction once per
// cooldown. Fired records the push so the player can be conveyed the same
// turn.
func (w *World) stepTransport(t Tile) {
	tr, _ := t.Transport()
	tr.Fired = false
	tr.Cooldown--
	if tr.Cooldown > 0 {
		return
	}
	tr.Cooldown = w.cfg.Transport.Cooldown
	tr.Fired = true

	if target, ok := w.tileAt(t.Pos().Add(tr.Dir)); ok && target.Inventory() != nil {
		w.give(t, target, 1, 1)
	}
}

// stepGrowing counts down construction and turns the cell into its target
// kind in place, keeping energy and droop.
func (w *World) stepGrowing(t Tile) {
	g, _ := t.Growing()
	g.Remaining--
	if g.Remaining > 0 {
		return
	}
	target, dir := g.Target, g.Dir

	data := t.data()
	data.Kind = target
	if target.HasInventory() {
		inv := inventory.New(w.capacity(target), 0, 0)
		inv.SetCarrier(target.String())
		data.Inv = inv
	}

	w.growingMap.Remove(t.Entity)
	w.addKindComponent(t.Entity, target)
	if tr, ok := t.Transport(); ok {
		tr.Dir = dir
	}
	w.renderDirty = true
	w.emit(Event{Kind: EventMature, Tile: target, Pos: t.Pos()})
}

// stepFountain adds water once per interval.
func (w *World) stepFountain(t Tile) {
	f, _ := t.Fountain()
	f.Cooldown--
	if f.Cooldown > 0 {
		return
	}
	f.Cooldown = w.cfg.Fountain.Interval
	t.Inventory().Add(w.cfg.Fountain.Water, 0)
}
