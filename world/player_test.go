package world

import (
	"testing"

	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/inventory"
)

func buildAt(kind components.TileKind, pos Vec) action.Action {
	return action.Build{Kind: kind, Pos: pos}
}

// playerWorld returns a world with a soil floor on row 4 and the player
// standing on a tissue at (2,3).
func playerWorld(t *testing.T) *World {
	t.Helper()
	w := groundedWorld(testConfig(), 6, 6, 4)
	w.Place(Vec{2, 3}, components.KindTissue)
	w.Player().Pos = Vec{2, 3}
	return w
}

func TestBuildScenario(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	p.Inv = inventory.New(100, 1, 1)
	target := Vec{3, 3}

	p.SetAction(buildAt(components.KindTissue, target))
	w.Step()

	if p.Inv.Water() != 0 || p.Inv.Sugar() != 0 {
		t.Errorf("expected player debited to (0,0), got %v", p.Inv)
	}
	if k := mustTile(t, w, target).Kind(); k != components.KindTissue {
		t.Fatalf("expected Tissue at target, got %s", k)
	}
	if p.Pos != target {
		t.Errorf("expected player to walk onto the new tissue, got %v", p.Pos)
	}
	if _, ok := p.LastResult(); !ok {
		t.Error("build should report success")
	}
}

func TestBuildWithBuildTimeStartsGrowing(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	target := Vec{3, 3}

	if !p.Apply(w, buildAt(components.KindLeaf, target)) {
		t.Fatal("leaf build should succeed")
	}
	tile := mustTile(t, w, target)
	g, ok := tile.Growing()
	if !ok || g.Target != components.KindLeaf {
		t.Fatalf("expected a growing leaf, got %s", tile.Kind())
	}
	if p.Pos != (Vec{2, 3}) {
		t.Errorf("growing cells are not walkable, player moved to %v", p.Pos)
	}

	for i := 0; i < w.Config().BuildTime("leaf"); i++ {
		w.Step()
	}
	if k := mustTile(t, w, target).Kind(); k != components.KindLeaf {
		t.Errorf("expected a mature leaf, got %s", k)
	}
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *World)
		act   action.Action
	}{
		{
			name:  "no resources",
			setup: func(w *World) { w.Player().Inv = inventory.New(100, 0, 5) },
			act:   buildAt(components.KindTissue, Vec{3, 3}),
		},
		{
			name:  "out of reach",
			setup: func(w *World) {},
			act:   buildAt(components.KindTissue, Vec{5, 3}),
		},
		{
			name:  "own tile",
			setup: func(w *World) {},
			act:   buildAt(components.KindTissue, Vec{2, 3}),
		},
		{
			name:  "onto rock",
			setup: func(w *World) { w.Place(Vec{3, 3}, components.KindRock) },
			act:   buildAt(components.KindTissue, Vec{3, 3}),
		},
		{
			name:  "onto fruit",
			setup: func(w *World) { w.Place(Vec{3, 3}, components.KindFruit) },
			act:   buildAt(components.KindTissue, Vec{3, 3}),
		},
		{
			name:  "second fruit",
			setup: func(w *World) { w.Place(Vec{0, 3}, components.KindFruit) },
			act:   buildAt(components.KindFruit, Vec{3, 3}),
		},
		{
			name:  "growing kind",
			setup: func(w *World) {},
			act:   buildAt(components.KindGrowing, Vec{3, 3}),
		},
		{
			name:  "environment kind",
			setup: func(w *World) {},
			act:   buildAt(components.KindSoil, Vec{3, 3}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := playerWorld(t)
			tc.setup(w)
			inv := w.Player().Inv
			water, sugar := inv.Water(), inv.Sugar()

			if w.Player().Apply(w, tc.act) {
				t.Fatal("expected build to fail")
			}
			if inv.Water() != water || inv.Sugar() != sugar {
				t.Errorf("failed build must not charge the player, got %v", inv)
			}
		})
	}
}

func TestBuildReplacesCellWithRefund(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	old := w.Place(Vec{3, 3}, components.KindTissue)
	old.Inventory().Add(2, 0)
	water, sugar := p.Inv.Water(), p.Inv.Sugar()

	if !p.Apply(w, buildAt(components.KindRoot, Vec{3, 3})) {
		t.Fatal("expected build over an existing cell to succeed")
	}
	if old.Valid() {
		t.Error("old cell should be removed")
	}
	// Full-energy refund cancels the cost; the old ledger comes back too.
	if got := p.Inv.Water(); got != water+2 {
		t.Errorf("expected water %v, got %v", water+2, got)
	}
	if got := p.Inv.Sugar(); got != sugar {
		t.Errorf("expected sugar %v, got %v", sugar, got)
	}
}

func TestBuildTransportWalks(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()

	ok := p.Apply(w, action.BuildTransport{Kind: components.KindTransport, Pos: Vec{3, 3}, Dir: components.East})
	if !ok {
		t.Fatal("expected transport build to succeed")
	}
	tile := mustTile(t, w, Vec{3, 3})
	state, isTransport := tile.Transport()
	if !isTransport || state.Dir != components.East {
		t.Fatalf("expected an east transport, got %s", tile.Kind())
	}
	if p.Pos != (Vec{3, 3}) {
		t.Errorf("expected player to step east onto the transport, got %v", p.Pos)
	}

	if p.Apply(w, action.BuildTransport{Kind: components.KindLeaf, Pos: Vec{4, 3}, Dir: components.East}) {
		t.Error("transport build with another kind should fail")
	}
}

func TestMove(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	dest := w.Place(Vec{2, 2}, components.KindTissue)
	dest.Inventory().Add(1.5, 0.5)
	w.Place(Vec{1, 3}, components.KindLeaf)
	water := p.Inv.Water()

	if p.Apply(w, action.Move{Dir: components.East}) {
		t.Error("moving into air should fail")
	}
	if p.Apply(w, action.Move{Dir: components.West}) {
		t.Error("moving onto a leaf should fail")
	}
	if p.Apply(w, action.Move{Dir: components.Vec{X: 0, Y: -2}}) {
		t.Error("moving more than one tile should fail")
	}
	if !p.Apply(w, action.Move{Dir: components.North}) {
		t.Fatal("moving onto tissue should succeed")
	}
	if p.Pos != (Vec{2, 2}) {
		t.Errorf("expected player at (2,2), got %v", p.Pos)
	}
	if got := p.Inv.Water(); got != water+1.5 {
		t.Errorf("expected pickup of 1.5 water, got %v", got-water)
	}
	if dest.Inventory().Water() != 0 || dest.Inventory().Sugar() != 0 {
		t.Errorf("destination should be emptied, got %v", dest.Inventory())
	}
}

func TestDeconstruct(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	cell := w.Place(Vec{3, 3}, components.KindTissue)
	cell.Cell().Energy = w.Config().Cell.EnergyMax / 2
	cell.Inventory().Add(0, 3)
	water, sugar := p.Inv.Water(), p.Inv.Sugar()

	if p.Apply(w, action.Deconstruct{Pos: Vec{2, 3}}) {
		t.Error("deconstructing the player's own tile needs force")
	}
	if p.Apply(w, action.Deconstruct{Pos: Vec{3, 2}}) {
		t.Error("deconstructing an empty tile should fail")
	}
	if !p.Apply(w, action.Deconstruct{Pos: Vec{3, 3}}) {
		t.Fatal("expected deconstruct to succeed")
	}
	if _, ok := w.CellAt(Vec{3, 3}); ok {
		t.Error("cell should be gone")
	}
	if got := p.Inv.Water(); got != water+0.5 {
		t.Errorf("expected half refund of water, got %v", got-water)
	}
	if got := p.Inv.Sugar(); got != sugar+0.5+3 {
		t.Errorf("expected half refund plus ledger sugar, got %v", got-sugar)
	}

	if !p.Apply(w, action.Deconstruct{Pos: Vec{2, 3}, Force: true}) {
		t.Error("forced deconstruct of own tile should succeed")
	}
}

func TestDeconstructFruitClearsReference(t *testing.T) {
	w := playerWorld(t)
	w.Place(Vec{3, 3}, components.KindFruit)
	if _, ok := w.Fruit(); !ok {
		t.Fatal("expected a fruit")
	}
	if !w.Player().Apply(w, action.Deconstruct{Pos: Vec{3, 3}}) {
		t.Fatal("expected deconstruct to succeed")
	}
	if _, ok := w.Fruit(); ok {
		t.Error("fruit reference should be cleared")
	}
	if !w.Player().Apply(w, buildAt(components.KindFruit, Vec{3, 3})) {
		t.Error("a new fruit should be allowed once the old one is gone")
	}
}

func TestDrop(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	tile := mustTile(t, w, p.Pos)
	tile.Inventory().Add(0, 2)
	water, sugar := p.Inv.Water(), p.Inv.Sugar()

	if !p.Apply(w, action.Drop{Water: 3}) {
		t.Fatal("drop onto tissue should succeed")
	}
	if got := tile.Inventory().Water(); got != 3 {
		t.Errorf("expected 3 water dropped, got %v", got)
	}
	if got := tile.Inventory().Sugar(); got != 0 {
		t.Errorf("expected sugar pulled back first, got %v", got)
	}
	if p.Inv.Water() != water-3 || p.Inv.Sugar() != sugar+2 {
		t.Errorf("unexpected player ledger %v", p.Inv)
	}

	p.Pos = Vec{0, 0} // Air has no ledger
	if p.Apply(w, action.Drop{Water: 1}) {
		t.Error("drop onto air should fail")
	}
}

func TestMultiple(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()

	ok := p.Apply(w, action.Multiple{Actions: []action.Action{
		buildAt(components.KindTissue, Vec{2, 2}),
		action.Move{Dir: components.East},
	}})
	if ok {
		t.Error("one failing sub-action should fail the whole")
	}
	if k := mustTile(t, w, Vec{2, 2}).Kind(); k != components.KindTissue {
		t.Errorf("earlier sub-actions still apply, got %s", k)
	}
}

func TestQueueAndFailureClearsPath(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	w.Place(Vec{2, 2}, components.KindTissue)
	w.Place(Vec{2, 1}, components.KindTissue)

	p.SetPath(action.FromPath([]Vec{{2, 3}, {2, 2}, {2, 1}}))
	w.Step()
	if p.Pos != (Vec{2, 2}) || p.Queued() != 1 {
		t.Fatalf("expected one step taken, at %v with %d queued", p.Pos, p.Queued())
	}

	// A pending action goes first.
	p.SetAction(action.Still{})
	w.Step()
	if p.Pos != (Vec{2, 2}) || p.Queued() != 1 {
		t.Fatalf("pending action should run before the queue")
	}

	p.SetPath([]action.Action{action.Move{Dir: components.East}, action.Move{Dir: components.North}})
	w.Step()
	if p.Queued() != 0 {
		t.Errorf("failed action should clear the queue, %d left", p.Queued())
	}
}

func TestMapActionHook(t *testing.T) {
	w := playerWorld(t)
	p := w.Player()
	p.MapAction = func(w *World, a action.Action) action.Action {
		// Walking into air builds tissue there instead.
		if m, ok := a.(action.Move); ok {
			dest := p.Pos.Add(m.Dir)
			if tile, ok := w.TileAt(dest.X, dest.Y); ok && tile.Kind() == components.KindAir {
				return buildAt(components.KindTissue, dest)
			}
		}
		return a
	}

	p.SetAction(action.Move{Dir: components.North})
	w.Step()

	if k := mustTile(t, w, Vec{2, 2}).Kind(); k != components.KindTissue {
		t.Errorf("expected the move to become a build, got %s", k)
	}
	if p.Pos != (Vec{2, 2}) {
		t.Errorf("expected player on the new tissue, got %v", p.Pos)
	}
}

func TestTransportConveysIdlePlayer(t *testing.T) {
	cfg := testConfig()
	cfg.Transport.Cooldown = 1
	w := groundedWorld(cfg, 6, 6, 4)
	w.PlaceTransport(Vec{2, 3}, components.East)
	w.Place(Vec{3, 3}, components.KindTissue)
	p := w.Player()
	p.Pos = Vec{2, 3}

	p.SetAction(action.Still{})
	w.Step()
	if p.Pos != (Vec{2, 3}) {
		t.Fatalf("a player with an action is not conveyed, got %v", p.Pos)
	}

	w.Step()
	if p.Pos != (Vec{3, 3}) {
		t.Errorf("idle player should ride the transport, got %v", p.Pos)
	}
}
