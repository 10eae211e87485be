package autoplay

import (
	"testing"

	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/inventory"
	"github.com/pthm-cable/sprout/world"
)

type vec = components.Vec

// seedling returns a 9x10 world with soil from row 6 and the player on a
// tissue cell at (4,6). Every kind builds instantly.
func seedling() *world.World {
	cfg := config.Default()
	cfg.Derived.BuildTime = nil
	w := world.NewBlank(cfg, 9, 10)
	for y := 6; y < 10; y++ {
		for x := 0; x < 9; x++ {
			w.Place(vec{X: x, Y: y}, components.KindSoil)
		}
	}
	w.Place(vec{X: 4, Y: 6}, components.KindTissue)
	w.Player().Pos = vec{X: 4, Y: 6}
	return w
}

func run(w *world.World, c Controller, turns int) {
	for i := 0; i < turns; i++ {
		if a := c.Next(w); a != nil {
			w.Player().SetAction(a)
		}
		w.Step()
	}
}

func kindAt(t *testing.T, w *world.World, x, y int) components.TileKind {
	t.Helper()
	tile, ok := w.TileAt(x, y)
	if !ok {
		t.Fatalf("(%d,%d) out of bounds", x, y)
	}
	return tile.Kind()
}

func TestScript(t *testing.T) {
	s := NewScript([]action.Action{action.Still{}, action.Move{Dir: components.North}})
	w := seedling()

	if _, ok := s.Next(w).(action.Still); !ok {
		t.Error("expected the first scripted action")
	}
	if _, ok := s.Next(w).(action.Move); !ok {
		t.Error("expected the second scripted action")
	}
	if !s.Done() || s.Next(w) != nil {
		t.Error("exhausted script should return nil")
	}
}

func TestGrowerBuildsPlant(t *testing.T) {
	w := seedling()
	g := NewGrower(3, 4)
	run(w, g, 30)

	if g.Base() != (vec{X: 4, Y: 6}) {
		t.Errorf("base = %v", g.Base())
	}
	for _, p := range []vec{{3, 6}, {5, 6}, {3, 7}, {5, 7}} {
		if k := kindAt(t, w, p.X, p.Y); k != components.KindRoot {
			t.Errorf("expected root at %v, got %s", p, k)
		}
	}
	for y := 3; y <= 5; y++ {
		if k := kindAt(t, w, 4, y); k != components.KindTissue {
			t.Errorf("expected stem tissue at (4,%d), got %s", y, k)
		}
		for _, x := range []int{3, 5} {
			if k := kindAt(t, w, x, y); k != components.KindLeaf {
				t.Errorf("expected leaf at (%d,%d), got %s", x, y, k)
			}
		}
	}
	fruit, ok := w.Fruit()
	if !ok || fruit.Pos() != (vec{X: 4, Y: 2}) {
		t.Fatalf("expected a fruit on top of the stem, got %v %v", fruit, ok)
	}
	if fruit.Inventory().Sugar() <= 0 {
		t.Error("fruit should have been fed sugar")
	}
	if w.CheckWinLoss() == world.Lose {
		t.Error("grower should not lose within 30 turns")
	}
}

func TestGrowerIsDeterministic(t *testing.T) {
	a, b := seedling(), seedling()
	run(a, NewGrower(DefaultStemHeight, DefaultRoots), 40)
	run(b, NewGrower(DefaultStemHeight, DefaultRoots), 40)

	if a.Player().Pos != b.Player().Pos {
		t.Errorf("players diverged: %v vs %v", a.Player().Pos, b.Player().Pos)
	}
	aw, as := a.Totals()
	bw, bs := b.Totals()
	if aw != bw || as != bs {
		t.Errorf("totals diverged: (%v,%v) vs (%v,%v)", aw, as, bw, bs)
	}
}

func TestGrowerForagesWhenBroke(t *testing.T) {
	w := seedling()
	w.Player().Inv = inventory.New(100, 0, 0)
	rich := w.Place(vec{X: 4, Y: 5}, components.KindTissue)
	rich.Inventory().Add(2, 1)

	a := NewGrower(3, 4).Next(w)
	m, ok := a.(action.Move)
	if !ok || m.Dir != components.North {
		t.Fatalf("expected a move onto the richest neighbor, got %v", a)
	}
}

func TestGrowerIdlesWithNothingToDo(t *testing.T) {
	w := seedling()
	w.Player().Inv = inventory.New(100, 0, 0)
	if a := NewGrower(3, 4).Next(w); a != nil {
		t.Errorf("expected nil with nothing to afford or forage, got %v", a)
	}
}
