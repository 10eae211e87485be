package world

import (
	"log/slog"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
)

// rates returns the diffusion rates of a kind.
func (w *World) rates(kind components.TileKind) config.Rates {
	d := w.cfg.Diffusion
	switch kind {
	case components.KindSoil, components.KindFountain:
		return d.Soil
	case components.KindTissue:
		return d.Tissue
	case components.KindTransport:
		return d.Transport
	case components.KindRoot:
		return d.Root
	}
	return config.Rates{}
}

// diffuse pulls water and sugar into t from every compatible neighbor that
// holds strictly more, using t's own rates. Water moves continuously or in
// whole random units depending on the configured mode; sugar always moves
// continuously.
func (w *World) diffuse(t Tile) {
	inv := t.Inventory()
	if inv == nil {
		return
	}
	kind := t.Kind()
	rates := w.rates(kind)
	discrete := w.cfg.Diffusion.Mode == config.DiffusionDiscrete

	for _, n := range w.TileNeighbors(t.Pos()) {
		if !compatible(kind, n.Tile.Kind()) {
			continue
		}
		other := n.Tile.Inventory()

		if gap := other.Water() - inv.Water(); gap > 0 && rates.Water > 0 {
			amount := gap * rates.Water
			if discrete {
				amount = 0
				if w.rng.Float64() < gap*rates.Water {
					amount = 1
				}
			}
			if amount > 0 {
				w.give(n.Tile, t, amount, 0)
			}
		}
		if gap := other.Sugar() - inv.Sugar(); gap > 0 && rates.Sugar > 0 {
			w.give(n.Tile, t, 0, gap*rates.Sugar)
		}
	}
}

// gravity lets a fixed amount of water sink into t from the compatible
// environment tile directly above.
func (w *World) gravity(t Tile) {
	amount := w.cfg.Diffusion.GravityWater
	if amount <= 0 || t.Inventory() == nil {
		return
	}
	above, ok := w.tileAt(t.Pos().Add(components.North))
	if !ok || above.Kind().IsCell() || !compatible(t.Kind(), above.Kind()) {
		return
	}
	w.give(above, t, amount, 0)
}

// give moves resources between two tiles' ledgers.
func (w *World) give(from, to Tile, water, sugar float64) {
	if _, err := from.Inventory().Give(to.Inventory(), water, sugar); err != nil {
		slog.Warn("world: give failed", "from", from.String(), "to", to.String(), "err", err)
	}
}
