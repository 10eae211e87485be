package world

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/inventory"
)

// Tile is a handle to one grid entity. Component pointers returned by its
// accessors are invalidated by the next structural change to the world, so
// callers should not hold them across SetTileAt or Step.
type Tile struct {
	Entity ecs.Entity
	w      *World
}

func (w *World) handle(e ecs.Entity) Tile {
	return Tile{Entity: e, w: w}
}

// Valid reports whether the handle still refers to a live entity.
func (t Tile) Valid() bool {
	return t.w != nil && t.w.ecs.Alive(t.Entity)
}

func (t Tile) data() *components.Tile {
	return t.w.tileMap.Get(t.Entity)
}

func (t Tile) Kind() components.TileKind       { return t.data().Kind }
func (t Tile) Pos() Vec                        { return t.data().Pos }
func (t Tile) Darkness() float64               { return t.data().Darkness }
func (t Tile) Inventory() *inventory.Inventory { return t.data().Inv }

// Cell returns the living-cell state, or nil for environment tiles.
func (t Tile) Cell() *components.Cell {
	if !t.Kind().IsCell() {
		return nil
	}
	return t.w.cellMap.Get(t.Entity)
}

// Energy returns the cell energy, or 0 for environment tiles.
func (t Tile) Energy() float64 {
	if c := t.Cell(); c != nil {
		return c.Energy
	}
	return 0
}

// DroopY returns the cell droop, or 0 for environment tiles.
func (t Tile) DroopY() float64 {
	if c := t.Cell(); c != nil {
		return c.DroopY
	}
	return 0
}

// Leaf returns the leaf state if the tile is a leaf.
func (t Tile) Leaf() (*components.Leaf, bool) {
	if !t.w.leafMap.Has(t.Entity) {
		return nil, false
	}
	return t.w.leafMap.Get(t.Entity), true
}

// Root returns the root state if the tile is a root.
func (t Tile) Root() (*components.Root, bool) {
	if !t.w.rootMap.Has(t.Entity) {
		return nil, false
	}
	return t.w.rootMap.Get(t.Entity), true
}

// Transport returns the conveyor state if the tile is a transport.
func (t Tile) Transport() (*components.Transport, bool) {
	if !t.w.transportMap.Has(t.Entity) {
		return nil, false
	}
	return t.w.transportMap.Get(t.Entity), true
}

// Growing returns the construction state if the tile is still growing.
func (t Tile) Growing() (*components.Growing, bool) {
	if !t.w.growingMap.Has(t.Entity) {
		return nil, false
	}
	return t.w.growingMap.Get(t.Entity), true
}

// Fountain returns the fountain state if the tile is a fountain.
func (t Tile) Fountain() (*components.Fountain, bool) {
	if !t.w.fountainMap.Has(t.Entity) {
		return nil, false
	}
	return t.w.fountainMap.Get(t.Entity), true
}

func (t Tile) growingInto(kind components.TileKind) bool {
	g, ok := t.Growing()
	return ok && g.Target == kind
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	if t.w == nil {
		return "<nil tile>"
	}
	return fmt.Sprintf("%s@(%d,%d)", t.Kind(), t.Pos().X, t.Pos().Y)
}
