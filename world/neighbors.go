package world

import "github.com/pthm-cable/sprout/components"

// Neighbor is one in-bounds tile adjacent to a position.
type Neighbor struct {
	Dir  Vec
	Tile Tile
}

// TileNeighbors returns the effective tiles around pos in one of five
// pre-shuffled direction orders, chosen by the current turn. Rotating the
// order keeps unbuffered diffusion and energy sharing from drifting in a
// fixed direction.
func (w *World) TileNeighbors(pos Vec) []Neighbor {
	order := &w.orders[w.time%neighborTables]
	out := make([]Neighbor, 0, len(order))
	for _, d := range order {
		if t, ok := w.tileAt(pos.Add(d)); ok {
			out = append(out, Neighbor{Dir: d, Tile: t})
		}
	}
	return out
}

// fixedNeighbors returns the neighbors of pos in clockwise order from north.
// Used where a stable priority is wanted, such as feeding.
func (w *World) fixedNeighbors(pos Vec) []Neighbor {
	out := make([]Neighbor, 0, len(components.Directions))
	for _, d := range components.Directions {
		if t, ok := w.tileAt(pos.Add(d)); ok {
			out = append(out, Neighbor{Dir: d, Tile: t})
		}
	}
	return out
}

// compatible reports whether two kinds exchange resources by diffusion:
// soil with soil (fountains included), conductive cells with each other.
func compatible(a, b components.TileKind) bool {
	if a.IsConductive() && b.IsConductive() {
		return true
	}
	return isSoil(a) && isSoil(b)
}

func isSoil(k components.TileKind) bool {
	return k == components.KindSoil || k == components.KindFountain
}
