package world

import (
	"math"

	"github.com/pthm-cable/sprout/components"
)

type traversalKey struct {
	parity  int
	reverse bool
}

// Step advances the world by one turn. Tiles are visited in checkerboard
// order, the parity (x+y+time)%2 == 0 half first, and the whole order is
// reversed on alternating blocks of four turns. The player steps last,
// then sunlight is recomputed and the turn counter advances.
//
// Tiles mutate their neighbors' ledgers while being visited, so results
// depend on the order; the rotation only spreads that bias around.
func (w *World) Step() {
	if w.profiler != nil {
		w.profiler.StartTurn()
		w.profiler.StartPhase(PhaseTiles)
	}

	order := w.traversalOrder()
	cells := 0
	for _, i := range order {
		if w.stepAt(i) {
			cells++
		}
	}

	if w.profiler != nil {
		w.profiler.StartPhase(PhasePlayer)
	}
	w.player.Step(w)

	if w.profiler != nil {
		w.profiler.StartPhase(PhaseSunlight)
	}
	w.ComputeSunlight()
	w.time++

	if w.profiler != nil {
		w.profiler.EndTurn(StepLoad{Turn: w.time, Tiles: len(order), Cells: cells})
	}
}

// traversalOrder returns grid indices in this turn's stepping order.
func (w *World) traversalOrder() []int {
	key := traversalKey{parity: w.time % 2, reverse: (w.time/4)%2 == 1}
	if order, ok := w.traversal[key]; ok {
		return order
	}

	order := make([]int, 0, w.width*w.height)
	for pass := 0; pass < 2; pass++ {
		for y := 0; y < w.height; y++ {
			for x := 0; x < w.width; x++ {
				if (x+y+key.parity)%2 == pass {
					order = append(order, y*w.width+x)
				}
			}
		}
	}
	if key.reverse {
		for a, b := 0, len(order)-1; a < b; a, b = a+1, b-1 {
			order[a], order[b] = order[b], order[a]
		}
	}
	w.traversal[key] = order
	return order
}

// stepAt steps the environment tile at grid index i, then the cell on top
// of it if there is one, and reports whether a cell was stepped. Soil and
// fountains keep running under cells.
func (w *World) stepAt(i int) bool {
	w.stepEnvironment(w.handle(w.env[i]))
	if !w.occupied[i] {
		return false
	}
	t := w.handle(w.cells[i])
	c := t.Cell()
	if c.SteppedAt == w.time {
		return false
	}
	c.SteppedAt = w.time
	w.stepCell(t)
	return true
}

func (w *World) stepEnvironment(t Tile) {
	switch t.Kind() {
	case components.KindAir:
		t.data().Darkness = 0
	case components.KindRock:
		t.data().Darkness = math.Inf(1)
	case components.KindDeadCell:
		w.propagateDarkness(t)
	case components.KindSoil, components.KindFountain:
		w.propagateDarkness(t)
		w.diffuse(t)
		w.gravity(t)
		if t.Kind() == components.KindFountain {
			w.stepFountain(t)
		}
	}
}

// stepCell runs the living-cell rules for t. The cell may die or move
// during the call.
func (w *World) stepCell(t Tile) {
	t.data().Darkness = 0
	if t.Inventory() != nil && t.Kind() != components.KindFruit {
		w.diffuse(t)
	}

	switch t.Kind() {
	case components.KindLeaf:
		w.stepLeaf(t)
	case components.KindRoot:
		w.stepRoot(t)
	case components.KindFruit:
		w.stepFruit(t)
	case components.KindTransport:
		w.stepTransport(t)
	case components.KindGrowing:
		w.stepGrowing(t)
	}

	if !w.stepEnergy(t) {
		return
	}
	w.stepDroop(t)
}

// propagateDarkness sets t's darkness to the cheapest path from light:
// the minimum over neighbors of their darkness plus the step length.
// Rock neighbors never carry light; any cell neighbor lets it through.
func (w *World) propagateDarkness(t Tile) {
	best := math.Inf(1)
	for _, n := range w.TileNeighbors(t.Pos()) {
		kind := n.Tile.Kind()
		if kind.IsCell() {
			best = 0
			break
		}
		if kind == components.KindRock {
			continue
		}
		step := 1.0
		if n.Dir.IsDiagonal() {
			step = math.Sqrt2
		}
		if d := n.Tile.Darkness() + step; d < best {
			best = d
		}
	}
	t.data().Darkness = best
}
