package autoplay

import (
	"math"

	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/pathfinding"
	"github.com/pthm-cable/sprout/world"
)

// Default grower shape.
const (
	DefaultStemHeight = 6
	DefaultRoots      = 4
	dropChunk         = 2.0
)

// rootSites are offsets from the starting tile tried for roots, in order.
var rootSites = [...]components.Vec{
	components.West, components.East, components.SouthWest, components.SouthEast,
}

// Grower is a deterministic scripted plant. From its starting tile it
// plants roots, raises a tissue stem flanked by leaves, tops it with a
// fruit and then feeds the fruit with the player's sugar. It forages
// neighboring ledgers whenever it cannot afford to build.
type Grower struct {
	StemHeight int
	Roots      int

	planner *pathfinding.Planner
	base    components.Vec
	started bool
}

// NewGrower creates a grower with the given stem height and root count.
func NewGrower(stemHeight, roots int) *Grower {
	return &Grower{
		StemHeight: stemHeight,
		Roots:      roots,
		planner:    pathfinding.NewPlanner(),
	}
}

// Base returns the tile the grower started from.
func (g *Grower) Base() components.Vec { return g.base }

// Next chooses this turn's action.
func (g *Grower) Next(w *world.World) action.Action {
	p := w.Player()
	if !g.started {
		g.base = p.Pos
		g.started = true
	}

	if _, ok := w.Fruit(); ok {
		return g.feedFruit(w)
	}
	if !g.canAfford(w) {
		return g.forage(w)
	}
	if g.countRoots(w) < g.Roots {
		if site, ok := g.rootSite(w); ok {
			if p.Pos.Chebyshev(site) != 1 {
				return g.walkTo(w, g.base)
			}
			return action.Build{Kind: components.KindRoot, Pos: site}
		}
	}
	return g.climb(w)
}

func (g *Grower) canAfford(w *world.World) bool {
	cost := w.Config().Build
	inv := w.Player().Inv
	return inv.Water() >= cost.WaterCost && inv.Sugar() >= cost.SugarCost
}

// countRoots counts roots around the base, including ones still growing.
func (g *Grower) countRoots(w *world.World) int {
	n := 0
	for _, d := range rootSites {
		cell, ok := w.CellAt(g.base.Add(d))
		if !ok {
			continue
		}
		if cell.Kind() == components.KindRoot {
			n++
		} else if gr, ok := cell.Growing(); ok && gr.Target == components.KindRoot {
			n++
		}
	}
	return n
}

// rootSite returns the first free soil tile next to the base.
func (g *Grower) rootSite(w *world.World) (components.Vec, bool) {
	for _, d := range rootSites {
		pos := g.base.Add(d)
		t, ok := w.TileAt(pos.X, pos.Y)
		if ok && t.Kind() == components.KindSoil {
			return pos, true
		}
	}
	return components.Vec{}, false
}

// stemTop follows walkable tiles straight up from the base.
func (g *Grower) stemTop(w *world.World) components.Vec {
	top := g.base
	for {
		up := top.Add(components.North)
		if !w.Walkable(up) {
			return top
		}
		top = up
	}
}

func (g *Grower) climb(w *world.World) action.Action {
	p := w.Player()
	top := g.stemTop(w)
	if p.Pos != top {
		return g.walkTo(w, top)
	}

	if top.Y < g.base.Y {
		for _, d := range [...]components.Vec{components.West, components.East} {
			if isAir(w, top.Add(d)) {
				return action.Build{Kind: components.KindLeaf, Pos: top.Add(d)}
			}
		}
	}

	up := top.Add(components.North)
	if g.base.Y-top.Y < g.StemHeight && isAir(w, up) {
		return action.Build{Kind: components.KindTissue, Pos: up}
	}

	for _, d := range [...]components.Vec{components.North, components.NorthWest, components.NorthEast} {
		if isAir(w, top.Add(d)) {
			return action.Build{Kind: components.KindFruit, Pos: top.Add(d)}
		}
	}
	return nil
}

// feedFruit drops sugar onto the tile under the player while standing next
// to the fruit; the fruit drains it from there.
func (g *Grower) feedFruit(w *world.World) action.Action {
	p := w.Player()
	fruit, _ := w.Fruit()
	if p.Pos.Chebyshev(fruit.Pos()) > 1 {
		if path, ok := g.planner.FindPathNear(w, p.Pos, fruit.Pos()); ok && len(path) > 1 {
			return action.Move{Dir: path[1].Sub(p.Pos)}
		}
		return nil
	}
	if sugar := p.Inv.Sugar(); sugar > 0 {
		return action.Drop{Sugar: math.Min(sugar, dropChunk)}
	}
	return g.forage(w)
}

// forage steps onto the richest walkable neighbor, picking up its ledger.
func (g *Grower) forage(w *world.World) action.Action {
	p := w.Player()
	best, bestAmount := components.Vec{}, 0.0
	for _, d := range components.Directions {
		pos := p.Pos.Add(d)
		if !w.Walkable(pos) {
			continue
		}
		t, _ := w.TileAt(pos.X, pos.Y)
		inv := t.Inventory()
		if inv == nil {
			continue
		}
		if amount := inv.Water() + inv.Sugar(); amount > bestAmount {
			best, bestAmount = d, amount
		}
	}
	if bestAmount == 0 {
		return nil
	}
	return action.Move{Dir: best}
}

func (g *Grower) walkTo(w *world.World, goal components.Vec) action.Action {
	p := w.Player()
	path, ok := g.planner.FindPath(w, p.Pos, goal)
	if !ok || len(path) < 2 {
		return nil
	}
	return action.Move{Dir: path[1].Sub(p.Pos)}
}

func isAir(w *world.World, pos components.Vec) bool {
	t, ok := w.TileAt(pos.X, pos.Y)
	return ok && t.Kind() == components.KindAir
}
