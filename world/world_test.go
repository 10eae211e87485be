package world

import (
	"math"
	"testing"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
)

const eps = 1e-9

// testConfig returns defaults with the sources of randomness and drift
// that tests do not want switched off.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Diffusion.GravityWater = 0
	cfg.Terrain.FountainCount = 0
	return cfg
}

// groundedWorld returns a blank world with a soil floor on the given row.
func groundedWorld(cfg *config.Config, width, height, floor int) *World {
	w := NewBlank(cfg, width, height)
	for y := floor; y < height; y++ {
		for x := 0; x < width; x++ {
			w.Place(Vec{x, y}, components.KindSoil)
		}
	}
	return w
}

func mustTile(t *testing.T, w *World, pos Vec) Tile {
	t.Helper()
	tile, ok := w.TileAt(pos.X, pos.Y)
	if !ok {
		t.Fatalf("no tile at %v", pos)
	}
	return tile
}

func TestTileAtOutOfBounds(t *testing.T) {
	w := NewBlank(testConfig(), 4, 3)
	for _, p := range []Vec{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		if _, ok := w.TileAt(p.X, p.Y); ok {
			t.Errorf("expected no tile at %v", p)
		}
	}
	if tile := mustTile(t, w, Vec{3, 2}); tile.Kind() != components.KindAir {
		t.Errorf("expected Air, got %s", tile.Kind())
	}
}

func TestCellOverlayPreservesEnvironment(t *testing.T) {
	w := groundedWorld(testConfig(), 5, 5, 3)
	pos := Vec{2, 3}

	w.Place(pos, components.KindTissue)
	if k := mustTile(t, w, pos).Kind(); k != components.KindTissue {
		t.Fatalf("expected overlay Tissue, got %s", k)
	}
	if env, _ := w.EnvironmentAt(pos); env.Kind() != components.KindSoil {
		t.Errorf("environment should still be Soil, got %s", env.Kind())
	}

	cell, ok := w.MaybeRemoveCellAt(pos)
	if !ok || cell.Kind() != components.KindTissue {
		t.Fatalf("expected removed Tissue, got %v (ok=%v)", cell, ok)
	}
	w.Discard(cell)
	if k := mustTile(t, w, pos).Kind(); k != components.KindSoil {
		t.Errorf("expected Soil after removal, got %s", k)
	}
	if _, ok := w.MaybeRemoveCellAt(pos); ok {
		t.Error("second removal should find nothing")
	}
}

func TestSetTileAtTransfersInventory(t *testing.T) {
	cfg := testConfig()
	cfg.Inventory.Root = 2
	w := NewBlank(cfg, 5, 5)
	pos := Vec{1, 1}

	tissue := w.Place(pos, components.KindTissue)
	tissue.Inventory().Add(1, 0.5)
	tissue.Inventory().Add(2, 0)

	root := w.NewTile(components.KindRoot, pos)
	w.SetTileAt(pos, root)

	if tissue.Valid() {
		t.Error("replaced tile should be removed")
	}
	inv := mustTile(t, w, pos).Inventory()
	// 3 water + 0.5 sugar into a capacity of 2: scaled and floored
	if inv.Water()+inv.Sugar() > 2+eps {
		t.Errorf("root over capacity: %v", inv)
	}
	if inv.Water() == 0 {
		t.Errorf("expected some water carried over, got %v", inv)
	}
}

func TestNonCellReplacesOverlayAndEnvironment(t *testing.T) {
	w := groundedWorld(testConfig(), 5, 5, 3)
	pos := Vec{2, 3}
	w.Place(pos, components.KindTissue)

	w.Place(pos, components.KindDeadCell)

	if _, ok := w.CellAt(pos); ok {
		t.Error("overlay slot should be cleared")
	}
	if k := mustTile(t, w, pos).Kind(); k != components.KindDeadCell {
		t.Errorf("expected DeadCell, got %s", k)
	}
}

func TestRenderableEntities(t *testing.T) {
	w := groundedWorld(testConfig(), 6, 4, 2)
	if got := len(w.RenderableEntities()); got != 24 {
		t.Fatalf("expected 24 renderables, got %d", got)
	}
	w.Place(Vec{1, 1}, components.KindTissue)
	w.Place(Vec{2, 2}, components.KindRoot)
	if got := len(w.RenderableEntities()); got != 26 {
		t.Errorf("expected 26 renderables, got %d", got)
	}
	for _, r := range w.RenderableEntities() {
		if !r.Valid() {
			t.Fatalf("stale renderable %v", r.Entity)
		}
	}
}

func TestTraversalOrderCoversGrid(t *testing.T) {
	w := NewBlank(testConfig(), 5, 4)
	for turn := 0; turn < 8; turn++ {
		w.time = turn
		order := w.traversalOrder()
		if len(order) != 20 {
			t.Fatalf("turn %d: expected 20 entries, got %d", turn, len(order))
		}
		seen := make(map[int]bool)
		for _, i := range order {
			if seen[i] {
				t.Fatalf("turn %d: index %d visited twice", turn, i)
			}
			seen[i] = true
		}

		// Visit order is parity-grouped; forward turns start with even.
		first := order[0]
		if (turn/4)%2 == 1 {
			first = order[len(order)-1]
		}
		p := w.posOf(first)
		if (p.X+p.Y+turn)%2 != 0 {
			t.Errorf("turn %d: first visited %v has odd parity", turn, p)
		}
	}
}

func TestTileNeighborsRotateOrder(t *testing.T) {
	w := NewBlank(testConfig(), 5, 5)
	center := Vec{2, 2}

	distinct := make(map[[8]Vec]bool)
	for turn := 0; turn < neighborTables; turn++ {
		w.time = turn
		ns := w.TileNeighbors(center)
		if len(ns) != 8 {
			t.Fatalf("expected 8 neighbors, got %d", len(ns))
		}
		var key [8]Vec
		for i, n := range ns {
			key[i] = n.Dir
			if n.Tile.Pos() != center.Add(n.Dir) {
				t.Errorf("neighbor %v at wrong position %v", n.Dir, n.Tile.Pos())
			}
		}
		distinct[key] = true
	}
	if len(distinct) < 2 {
		t.Error("expected the direction order to vary across turns")
	}

	if got := len(w.TileNeighbors(Vec{0, 0})); got != 3 {
		t.Errorf("corner should have 3 neighbors, got %d", got)
	}
}

func TestSingleOccupancyInGeneratedWorld(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 20, 24
	cfg = cfg.Clone()
	w := New(cfg)

	for turn := 0; turn < 60; turn++ {
		w.Step()

		cells := 0
		for _, n := range w.CountCells() {
			cells += n
		}
		occupied := 0
		for i, ok := range w.occupied {
			if !ok {
				continue
			}
			occupied++
			if got := w.handle(w.cells[i]).Pos(); got != w.posOf(i) {
				t.Fatalf("turn %d: cell in slot %v believes it is at %v", turn, w.posOf(i), got)
			}
		}
		if cells != occupied {
			t.Fatalf("turn %d: %d live cells for %d occupied slots", turn, cells, occupied)
		}
	}
}

func TestEnergyBoundsHold(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 16, 20
	cfg = cfg.Clone()
	w := New(cfg)
	maxEnergy := cfg.Cell.EnergyMax

	for turn := 0; turn < 100; turn++ {
		w.Step()
		for _, e := range w.CellEnergies() {
			if e < 0 || e > maxEnergy {
				t.Fatalf("turn %d: energy %v outside [0, %v]", turn, e, maxEnergy)
			}
		}
	}
}

func TestGeneratedWorldLayout(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 20, 30
	cfg = cfg.Clone()
	w := New(cfg)
	groundY := cfg.Derived.GroundY

	for x := 0; x < w.Width(); x++ {
		if k := mustTile(t, w, Vec{x, 0}).Kind(); k != components.KindAir {
			t.Errorf("top row should be Air, got %s at x=%d", k, x)
		}
	}
	p := w.Player().Pos
	if p != (Vec{cfg.World.Width / 2, groundY}) {
		t.Errorf("player should start at the ground line, got %v", p)
	}
	if k := mustTile(t, w, p).Kind(); k != components.KindTissue {
		t.Errorf("player should stand on Tissue, got %s", k)
	}
	if env, _ := w.EnvironmentAt(Vec{0, groundY}); env.Kind() != components.KindSoil {
		t.Errorf("ground row should be Soil, got %s", env.Kind())
	}
	if w.CheckWinLoss() != Playing {
		t.Errorf("fresh world should be playing, got %s", w.CheckWinLoss())
	}
}

func TestCo2Range(t *testing.T) {
	w := New(config.Default())
	for y := 0; y < w.Height(); y += 3 {
		for x := 0; x < w.Width(); x += 3 {
			c := w.Co2At(Vec{x, y})
			if c < minCO2 || c > maxCO2 || math.IsNaN(c) {
				t.Fatalf("co2 %v out of range at (%d,%d)", c, x, y)
			}
		}
	}
}

func TestSunlight(t *testing.T) {
	cfg := testConfig()
	w := NewBlank(cfg, 6, 6)
	for x := 0; x < 6; x++ {
		if l := w.SunlightAt(Vec{x, 5}); math.Abs(l-1) > eps {
			t.Fatalf("open sky at t=0 should be fully lit, got %v", l)
		}
	}

	for x := 0; x < 6; x++ {
		w.Place(Vec{x, 2}, components.KindRock)
	}
	w.ComputeSunlight()

	if l := w.SunlightAt(Vec{3, 2}); l != 0 {
		t.Errorf("rock should hold no light, got %v", l)
	}
	if l := w.SunlightAt(Vec{3, 3}); math.Abs(l-cfg.Sunlight.MinLight) > eps {
		t.Errorf("air under a rock roof should sit at the floor %v, got %v", cfg.Sunlight.MinLight, l)
	}
	if l := w.SunlightAt(Vec{3, 1}); math.Abs(l-1) > eps {
		t.Errorf("air above the roof should stay lit, got %v", l)
	}
}

func TestSunlightSweepsSideways(t *testing.T) {
	cfg := testConfig()
	cfg.Sunlight.Period = 4 // quarter period puts the sun fully to one side
	w := NewBlank(cfg, 5, 4)
	w.Place(Vec{1, 1}, components.KindRock)
	w.time = 1
	w.ComputeSunlight()

	// s = sin(pi/2) = 1: all light comes from the upper left.
	if l := w.SunlightAt(Vec{2, 2}); math.Abs(l-cfg.Sunlight.MinLight) > eps {
		t.Errorf("tile shadowed from the upper left should be at the floor, got %v", l)
	}
	if l := w.SunlightAt(Vec{1, 2}); l <= cfg.Sunlight.MinLight {
		t.Errorf("tile lit from the upper left should be bright, got %v", l)
	}
}

func TestEventsEmitted(t *testing.T) {
	w := groundedWorld(testConfig(), 5, 5, 3)
	w.Place(Vec{2, 2}, components.KindTissue)
	w.Player().Pos = Vec{2, 2}

	var got []Event
	w.OnEvent(func(e Event) { got = append(got, e) })

	w.Player().SetAction(buildAt(components.KindTissue, Vec{3, 2}))
	w.Step()

	if len(got) == 0 || got[0].Kind != EventBuild || got[0].Tile != components.KindTissue {
		t.Fatalf("expected a build event, got %+v", got)
	}
	if got[0].Turn != 1 || got[0].Turn != w.Time() {
		t.Errorf("event turn = %d, want 1 (Time after Step = %d)", got[0].Turn, w.Time())
	}
}

type recordingProfiler struct {
	turns  int
	phases []string
	loads  []StepLoad
}

func (r *recordingProfiler) StartTurn()              { r.turns++ }
func (r *recordingProfiler) StartPhase(phase string) { r.phases = append(r.phases, phase) }
func (r *recordingProfiler) EndTurn(load StepLoad)   { r.loads = append(r.loads, load) }

func TestProfilerPhases(t *testing.T) {
	w := NewBlank(testConfig(), 3, 3)
	p := &recordingProfiler{}
	w.SetProfiler(p)
	w.Step()
	w.Step()

	if p.turns != 2 {
		t.Errorf("expected 2 turns, got %d", p.turns)
	}
	want := []string{PhaseTiles, PhasePlayer, PhaseSunlight}
	if len(p.phases) != 6 || p.phases[0] != want[0] || p.phases[1] != want[1] || p.phases[2] != want[2] {
		t.Errorf("unexpected phases %v", p.phases)
	}
	if w.Time() != 2 {
		t.Errorf("expected time 2, got %d", w.Time())
	}
}

func TestProfilerLoad(t *testing.T) {
	w := groundedWorld(testConfig(), 4, 4, 3)
	w.Place(Vec{1, 2}, components.KindTissue)
	w.Place(Vec{2, 2}, components.KindTissue)
	p := &recordingProfiler{}
	w.SetProfiler(p)
	w.Step()

	if len(p.loads) != 1 {
		t.Fatalf("expected one load report, got %d", len(p.loads))
	}
	if got := p.loads[0]; got != (StepLoad{Turn: 1, Tiles: 16, Cells: 2}) {
		t.Errorf("load = %+v, want turn 1, 16 tiles, 2 cells", got)
	}
}
