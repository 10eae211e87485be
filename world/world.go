// Package world holds the authoritative grid: an environment layer that is
// never empty, a cell overlay with at most one living cell per position, the
// player, and the per-turn stepping rules that advance all of them.
package world

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/inventory"
)

// Vec is re-exported for callers that only deal with the world.
type Vec = components.Vec

// neighborTables is how many pre-shuffled direction orders rotate per turn.
const neighborTables = 5

// Outcome is the result of CheckWinLoss.
type Outcome uint8

const (
	Playing Outcome = iota
	Win
	Lose
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Lose:
		return "lose"
	}
	return "playing"
}

// Profiler receives phase boundaries during Step, then the load the turn
// carried. telemetry.PerfCollector satisfies it.
type Profiler interface {
	StartTurn()
	StartPhase(phase string)
	EndTurn(load StepLoad)
}

// StepLoad is the work one Step did in its tiles phase.
type StepLoad struct {
	Turn  int // Turn just completed, equal to Time()
	Tiles int // Environment tiles stepped, one per grid position
	Cells int // Live cells stepped
}

// Phase names reported to the Profiler.
const (
	PhaseTiles    = "tiles"
	PhasePlayer   = "player"
	PhaseSunlight = "sunlight"
)

// World holds the complete simulation state.
type World struct {
	cfg *config.Config
	ecs *ecs.World
	rng *rand.Rand

	width, height int
	time          int

	// Grid layers, indexed by y*width+x. env is always populated; cells[i]
	// is meaningful only while occupied[i] is set.
	env      []ecs.Entity
	cells    []ecs.Entity
	occupied []bool
	sunlight []float64

	// Component mappers
	tileMap      *ecs.Map1[components.Tile]
	cellTileMap  *ecs.Map2[components.Tile, components.Cell]
	cellMap      *ecs.Map[components.Cell]
	leafMap      *ecs.Map[components.Leaf]
	rootMap      *ecs.Map[components.Root]
	transportMap *ecs.Map[components.Transport]
	growingMap   *ecs.Map[components.Growing]
	fountainMap  *ecs.Map[components.Fountain]
	cellFilter   ecs.Filter2[components.Tile, components.Cell]

	player *Player

	// Non-owning reference to the single fruit, resolved through the ECS.
	fruit    ecs.Entity
	hasFruit bool

	orders    [neighborTables][len(components.Directions)]Vec
	traversal map[traversalKey][]int
	co2Noise  opensimplex.Noise

	renderables []Tile
	renderDirty bool

	listeners []func(Event)
	profiler  Profiler
}

// New creates a world with generated terrain, the starting tissue column and
// the player standing on top of it.
func New(cfg *config.Config) *World {
	w := newWorld(cfg, cfg.World.Width, cfg.World.Height)
	w.generateTerrain()
	w.ComputeSunlight()
	return w
}

// NewBlank creates an all-Air world of the given size with the player at the
// top center. Used by tests and tools that lay out tiles by hand.
func NewBlank(cfg *config.Config, width, height int) *World {
	w := newWorld(cfg, width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			w.env[w.index(Vec{x, y})] = w.NewTile(components.KindAir, Vec{x, y}).Entity
		}
	}
	w.player.Pos = Vec{width / 2, 0}
	w.ComputeSunlight()
	return w
}

func newWorld(cfg *config.Config, width, height int) *World {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("world: invalid size %dx%d", width, height))
	}
	world := ecs.NewWorld()
	n := width * height

	w := &World{
		cfg:          cfg,
		ecs:          world,
		rng:          rand.New(rand.NewSource(cfg.World.Seed)),
		width:        width,
		height:       height,
		env:          make([]ecs.Entity, n),
		cells:        make([]ecs.Entity, n),
		occupied:     make([]bool, n),
		sunlight:     make([]float64, n),
		tileMap:      ecs.NewMap1[components.Tile](world),
		cellTileMap:  ecs.NewMap2[components.Tile, components.Cell](world),
		cellMap:      ecs.NewMap[components.Cell](world),
		leafMap:      ecs.NewMap[components.Leaf](world),
		rootMap:      ecs.NewMap[components.Root](world),
		transportMap: ecs.NewMap[components.Transport](world),
		growingMap:   ecs.NewMap[components.Growing](world),
		fountainMap:  ecs.NewMap[components.Fountain](world),
		cellFilter:   *ecs.NewFilter2[components.Tile, components.Cell](world),
		traversal:    make(map[traversalKey][]int, 4),
		co2Noise:     opensimplex.New(cfg.World.Seed + 1),
		renderDirty:  true,
	}

	// Neighbor orders come from their own stream so that terrain or
	// gameplay randomness never shifts them.
	orderRng := rand.New(rand.NewSource(cfg.World.Seed))
	for i := range w.orders {
		w.orders[i] = components.Directions
		orderRng.Shuffle(len(w.orders[i]), func(a, b int) {
			w.orders[i][a], w.orders[i][b] = w.orders[i][b], w.orders[i][a]
		})
	}

	w.player = newPlayer(cfg)
	return w
}

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// Width returns the grid width.
func (w *World) Width() int { return w.width }

// Height returns the grid height.
func (w *World) Height() int { return w.height }

// Time returns the number of completed turns.
func (w *World) Time() int { return w.time }

// Player returns the single player.
func (w *World) Player() *Player { return w.player }

// SetProfiler installs a phase timer for Step. Pass nil to disable.
func (w *World) SetProfiler(p Profiler) { w.profiler = p }

// InBounds reports whether pos lies on the grid.
func (w *World) InBounds(pos Vec) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < w.width && pos.Y < w.height
}

func (w *World) index(pos Vec) int {
	return pos.Y*w.width + pos.X
}

func (w *World) posOf(i int) Vec {
	return Vec{i % w.width, i / w.width}
}

// TileAt returns the effective tile at (x, y): the overlay cell if one is
// present, otherwise the environment tile. Returns false outside the grid.
func (w *World) TileAt(x, y int) (Tile, bool) {
	return w.tileAt(Vec{x, y})
}

func (w *World) tileAt(pos Vec) (Tile, bool) {
	if !w.InBounds(pos) {
		return Tile{}, false
	}
	i := w.index(pos)
	if w.occupied[i] {
		return w.handle(w.cells[i]), true
	}
	return w.handle(w.env[i]), true
}

// Walkable reports whether the player may stand at pos.
func (w *World) Walkable(pos Vec) bool {
	t, ok := w.tileAt(pos)
	return ok && t.Kind().IsWalkable()
}

// EnvironmentAt returns the environment tile at pos, ignoring any cell.
func (w *World) EnvironmentAt(pos Vec) (Tile, bool) {
	if !w.InBounds(pos) {
		return Tile{}, false
	}
	return w.handle(w.env[w.index(pos)]), true
}

// CellAt returns the overlay cell at pos, if any.
func (w *World) CellAt(pos Vec) (Tile, bool) {
	if !w.InBounds(pos) || !w.occupied[w.index(pos)] {
		return Tile{}, false
	}
	return w.handle(w.cells[w.index(pos)]), true
}

// NewTile creates a detached tile of the given kind. It becomes part of the
// grid once passed to SetTileAt. Cells start at full energy.
func (w *World) NewTile(kind components.TileKind, pos Vec) Tile {
	var inv *inventory.Inventory
	if kind.HasInventory() {
		inv = inventory.New(w.capacity(kind), 0, 0)
		inv.SetCarrier(kind.String())
	}
	tile := components.Tile{Kind: kind, Pos: pos, Inv: inv}
	if kind != components.KindAir && !kind.IsCell() {
		// Unlit until light reaches it through propagation.
		tile.Darkness = math.Inf(1)
	}

	if !kind.IsCell() {
		e := w.tileMap.NewEntity(&tile)
		if kind == components.KindFountain {
			w.fountainMap.Add(e, &components.Fountain{Cooldown: w.cfg.Fountain.Interval})
		}
		return w.handle(e)
	}

	cell := components.Cell{Energy: w.cfg.Cell.EnergyMax, SteppedAt: -1}
	e := w.cellTileMap.NewEntity(&tile, &cell)
	w.addKindComponent(e, kind)
	return w.handle(e)
}

// NewTransport creates a detached transport cell facing dir.
func (w *World) NewTransport(pos, dir Vec) Tile {
	t := w.NewTile(components.KindTransport, pos)
	w.transportMap.Get(t.Entity).Dir = dir
	return t
}

// NewGrowing creates a detached cell under construction that matures into
// target after turns steps.
func (w *World) NewGrowing(target components.TileKind, pos, dir Vec, turns int) Tile {
	t := w.NewTile(components.KindGrowing, pos)
	w.growingMap.Add(t.Entity, &components.Growing{Remaining: turns, Target: target, Dir: dir})
	return t
}

func (w *World) addKindComponent(e ecs.Entity, kind components.TileKind) {
	switch kind {
	case components.KindLeaf:
		w.leafMap.Add(e, &components.Leaf{})
	case components.KindRoot:
		w.rootMap.Add(e, &components.Root{Cooldown: w.cfg.Root.Cooldown})
	case components.KindTransport:
		w.transportMap.Add(e, &components.Transport{Dir: components.North, Cooldown: w.cfg.Transport.Cooldown})
	}
}

func (w *World) capacity(kind components.TileKind) float64 {
	c := w.cfg.Inventory
	switch kind {
	case components.KindSoil:
		return c.Soil
	case components.KindFountain:
		return c.Fountain
	case components.KindTissue:
		return c.Tissue
	case components.KindTransport:
		return c.Transport
	case components.KindRoot:
		return c.Root
	case components.KindFruit:
		return c.Fruit
	}
	return 0
}

// Place creates a tile of kind and puts it at pos.
func (w *World) Place(pos Vec, kind components.TileKind) Tile {
	t := w.NewTile(kind, pos)
	w.SetTileAt(pos, t)
	return t
}

// PlaceTransport creates a transport facing dir and puts it at pos.
func (w *World) PlaceTransport(pos, dir Vec) Tile {
	t := w.NewTransport(pos, dir)
	w.SetTileAt(pos, t)
	return t
}

// SetTileAt puts t at pos. The contents of every tile being replaced move
// into t's ledger when it has one; anything that does not fit is discarded
// with a warning. A cell goes into the overlay; any other tile clears the
// overlay slot and replaces the environment tile.
func (w *World) SetTileAt(pos Vec, t Tile) {
	if !w.InBounds(pos) {
		return
	}
	i := w.index(pos)
	w.tileMap.Get(t.Entity).Pos = pos

	if t.Kind().IsCell() {
		if w.occupied[i] {
			w.replace(w.cells[i], t)
		}
		w.cells[i] = t.Entity
		w.occupied[i] = true
	} else {
		if w.occupied[i] {
			w.replace(w.cells[i], t)
			w.occupied[i] = false
		}
		w.replace(w.env[i], t)
		w.env[i] = t.Entity
	}

	if t.Kind() == components.KindFruit || t.growingInto(components.KindFruit) {
		w.fruit = t.Entity
		w.hasFruit = true
	}
	w.renderDirty = true
}

// replace drains old into t and removes old from the ECS.
func (w *World) replace(old ecs.Entity, t Tile) {
	if old == t.Entity || !w.ecs.Alive(old) {
		return
	}
	out := w.handle(old)
	if inv := out.Inventory(); inv != nil && inv.Water()+inv.Sugar() > 0 {
		if in := t.Inventory(); in != nil {
			if _, err := inv.Give(in, inv.Water(), inv.Sugar()); err != nil {
				slog.Warn("world: transfer on replace failed", "pos", out.Pos(), "err", err)
			}
		}
		if inv.Water()+inv.Sugar() > 0 {
			slog.Warn("world: discarding resources",
				"pos", out.Pos(),
				"from", out.Kind().String(),
				"to", t.Kind().String(),
				"water", inv.Water(),
				"sugar", inv.Sugar(),
			)
		}
	}
	w.destroy(old)
}

// MaybeRemoveCellAt clears the overlay slot at pos and returns the detached
// cell. The cell stays alive so it can be placed again; callers that are
// done with it must pass it to Discard.
func (w *World) MaybeRemoveCellAt(pos Vec) (Tile, bool) {
	if !w.InBounds(pos) {
		return Tile{}, false
	}
	i := w.index(pos)
	if !w.occupied[i] {
		return Tile{}, false
	}
	w.occupied[i] = false
	w.renderDirty = true
	return w.handle(w.cells[i]), true
}

// Discard removes a detached tile from the simulation.
func (w *World) Discard(t Tile) {
	w.destroy(t.Entity)
	w.renderDirty = true
}

func (w *World) destroy(e ecs.Entity) {
	if !w.ecs.Alive(e) {
		return
	}
	if w.hasFruit && e == w.fruit {
		w.hasFruit = false
	}
	w.ecs.RemoveEntity(e)
}

// Fruit returns the fruit cell if one has been built and still exists.
func (w *World) Fruit() (Tile, bool) {
	if !w.hasFruit || !w.ecs.Alive(w.fruit) {
		return Tile{}, false
	}
	return w.handle(w.fruit), true
}

// CheckWinLoss reports Win once the fruit holds more sugar than the win
// threshold, Lose when the player stands on a dead cell, else Playing.
func (w *World) CheckWinLoss() Outcome {
	if fruit, ok := w.Fruit(); ok && fruit.Kind() == components.KindFruit {
		if fruit.Inventory().Sugar() > w.cfg.Win.FruitSugar {
			return Win
		}
	}
	if t, ok := w.tileAt(w.player.Pos); ok && t.Kind() == components.KindDeadCell {
		return Lose
	}
	return Playing
}

// RenderableEntities returns every environment tile followed by every
// present cell. The slice is rebuilt only after the grid changed and must
// not be modified by the caller.
func (w *World) RenderableEntities() []Tile {
	if !w.renderDirty {
		return w.renderables
	}
	w.renderables = w.renderables[:0]
	for _, e := range w.env {
		w.renderables = append(w.renderables, w.handle(e))
	}
	for i, e := range w.cells {
		if w.occupied[i] {
			w.renderables = append(w.renderables, w.handle(e))
		}
	}
	w.renderDirty = false
	return w.renderables
}

// CountCells returns the number of live cells of each kind in the overlay.
func (w *World) CountCells() map[components.TileKind]int {
	counts := make(map[components.TileKind]int)
	query := w.cellFilter.Query()
	for query.Next() {
		tile, _ := query.Get()
		if w.occupiedBy(tile.Pos, query.Entity()) {
			counts[tile.Kind]++
		}
	}
	return counts
}

// CellEnergies returns the energy of every live cell in the overlay.
func (w *World) CellEnergies() []float64 {
	var out []float64
	query := w.cellFilter.Query()
	for query.Next() {
		tile, cell := query.Get()
		if w.occupiedBy(tile.Pos, query.Entity()) {
			out = append(out, cell.Energy)
		}
	}
	return out
}

func (w *World) occupiedBy(pos Vec, e ecs.Entity) bool {
	if !w.InBounds(pos) {
		return false
	}
	i := w.index(pos)
	return w.occupied[i] && w.cells[i] == e
}

// Totals sums water and sugar over every ledger on the grid and the player.
func (w *World) Totals() (water, sugar float64) {
	add := func(inv *inventory.Inventory) {
		if inv != nil {
			water += inv.Water()
			sugar += inv.Sugar()
		}
	}
	for i := range w.env {
		add(w.handle(w.env[i]).Inventory())
		if w.occupied[i] {
			add(w.handle(w.cells[i]).Inventory())
		}
	}
	add(w.player.Inv)
	return water, sugar
}
