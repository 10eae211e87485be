package world

import (
	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/inventory"
)

// Player is the single agent. It holds a ledger and resolves one action per
// turn against the world.
type Player struct {
	Pos Vec
	Inv *inventory.Inventory

	// MapAction, when set, may rewrite each action before it resolves.
	MapAction func(w *World, a action.Action) action.Action

	pending    action.Action
	queue      []action.Action
	lastAction action.Action
	lastOK     bool
}

func newPlayer(cfg *config.Config) *Player {
	inv := inventory.New(cfg.Inventory.Player, cfg.Player.StartWater, cfg.Player.StartSugar)
	inv.SetCarrier("player")
	return &Player{Inv: inv}
}

// SetAction sets the action for the next turn. It takes priority over the
// queued path.
func (p *Player) SetAction(a action.Action) {
	p.pending = a
}

// SetPath replaces the queued actions.
func (p *Player) SetPath(actions []action.Action) {
	p.queue = append(p.queue[:0], actions...)
}

// Queued returns how many actions wait in the path queue.
func (p *Player) Queued() int { return len(p.queue) }

// LastResult returns the last resolved action and whether it succeeded.
func (p *Player) LastResult() (action.Action, bool) {
	return p.lastAction, p.lastOK
}

func (p *Player) next() action.Action {
	if p.pending != nil {
		a := p.pending
		p.pending = nil
		return a
	}
	if len(p.queue) > 0 {
		a := p.queue[0]
		p.queue = p.queue[1:]
		return a
	}
	return nil
}

// Step resolves the next action. With nothing to do, a player standing on
// a transport that fired this turn is carried along its direction. A failed
// action clears the queued path.
func (p *Player) Step(w *World) {
	a := p.next()
	if a != nil && p.MapAction != nil {
		a = p.MapAction(w, a)
	}
	if a == nil {
		a = action.None{}
	}
	if _, idle := a.(action.None); idle {
		p.convey(w)
		p.lastAction, p.lastOK = a, true
		return
	}

	ok := p.Apply(w, a)
	p.lastAction, p.lastOK = a, ok
	if !ok {
		p.queue = p.queue[:0]
		w.emit(Event{Kind: EventActionFailed, Pos: p.Pos, Detail: a.String()})
	}
}

// Apply resolves a single action immediately and reports whether it was
// legal. Illegal actions leave the world untouched.
func (p *Player) Apply(w *World, a action.Action) bool {
	switch a := a.(type) {
	case action.Still, action.None:
		return true
	case action.Move:
		return p.move(w, a.Dir)
	case action.Build:
		t, ok := p.build(w, a.Kind, a.Pos, components.North)
		if ok && t.Kind().IsWalkable() {
			p.Pos = a.Pos
		}
		return ok
	case action.BuildTransport:
		if a.Kind != components.KindTransport || !a.Dir.IsUnit() {
			return false
		}
		if _, ok := p.build(w, components.KindTransport, a.Pos, a.Dir); !ok {
			return false
		}
		p.move(w, a.Dir)
		return true
	case action.Deconstruct:
		return p.deconstruct(w, a.Pos, a.Force)
	case action.Drop:
		return p.drop(w, a.Water, a.Sugar)
	case action.Multiple:
		ok := true
		for _, sub := range a.Actions {
			if !p.Apply(w, sub) {
				ok = false
			}
		}
		return ok
	}
	return false
}

// move steps onto a walkable cell and picks up whatever it holds.
func (p *Player) move(w *World, dir Vec) bool {
	if !dir.IsUnit() {
		return false
	}
	dest := p.Pos.Add(dir)
	t, ok := w.tileAt(dest)
	if !ok || t.Kind().IsObstacle() || !t.Kind().IsWalkable() {
		return false
	}
	p.Pos = dest
	if inv := t.Inventory(); inv != nil {
		inv.Give(p.Inv, inv.Water(), inv.Sugar())
	}
	return true
}

// build places a new cell next to the player. Building over an existing
// cell deconstructs it first with a refund. Kinds with a build time start
// as growing cells.
func (p *Player) build(w *World, kind components.TileKind, pos, dir Vec) (Tile, bool) {
	if !kind.IsCell() || kind == components.KindGrowing {
		return Tile{}, false
	}
	if p.Pos.Chebyshev(pos) != 1 {
		return Tile{}, false
	}
	target, ok := w.tileAt(pos)
	if !ok || target.Kind().IsObstacle() || target.Kind() == components.KindFruit {
		return Tile{}, false
	}
	if kind == components.KindFruit {
		if _, exists := w.Fruit(); exists {
			return Tile{}, false
		}
	}
	cost := w.cfg.Build
	if p.Inv.Water() < cost.WaterCost || p.Inv.Sugar() < cost.SugarCost {
		return Tile{}, false
	}

	if target.Kind().IsCell() {
		p.removeCell(w, pos)
	}
	p.Inv.Change(-cost.WaterCost, -cost.SugarCost)

	var t Tile
	if turns := w.cfg.BuildTime(kind.String()); turns > 0 {
		t = w.NewGrowing(kind, pos, dir, turns)
	} else if kind == components.KindTransport {
		t = w.NewTransport(pos, dir)
	} else {
		t = w.NewTile(kind, pos)
	}
	w.SetTileAt(pos, t)
	w.emit(Event{Kind: EventBuild, Tile: kind, Pos: pos})
	return t, true
}

// deconstruct removes a cell within reach. The player's own tile needs
// force.
func (p *Player) deconstruct(w *World, pos Vec, force bool) bool {
	if p.Pos.Chebyshev(pos) > 1 {
		return false
	}
	if pos == p.Pos && !force {
		return false
	}
	if _, ok := w.CellAt(pos); !ok {
		return false
	}
	kind := p.removeCell(w, pos)
	w.emit(Event{Kind: EventDeconstruct, Tile: kind, Pos: pos})
	return true
}

// removeCell takes the cell at pos off the grid, refunds the build cost in
// proportion to its remaining energy and returns its ledger to the player.
func (p *Player) removeCell(w *World, pos Vec) components.TileKind {
	cell, ok := w.MaybeRemoveCellAt(pos)
	if !ok {
		return components.KindAir
	}
	kind := cell.Kind()

	share := cell.Energy() / w.cfg.Cell.EnergyMax
	cost := w.cfg.Build
	p.Inv.Add(cost.WaterCost*share, cost.SugarCost*share)
	if inv := cell.Inventory(); inv != nil {
		inv.Give(p.Inv, inv.Water(), inv.Sugar())
	}
	w.Discard(cell)
	return kind
}

// drop swaps resources with the ledger under the player. For each resource
// dropped the same amount of the other one is pulled back first, which
// makes room on the tile.
func (p *Player) drop(w *World, water, sugar float64) bool {
	t, ok := w.tileAt(p.Pos)
	if !ok || t.Inventory() == nil {
		return false
	}
	inv := t.Inventory()
	if water > 0 {
		inv.Give(p.Inv, 0, water)
		p.Inv.Give(inv, water, 0)
	}
	if sugar > 0 {
		inv.Give(p.Inv, sugar, 0)
		p.Inv.Give(inv, 0, sugar)
	}
	return true
}

// convey carries the player one step along a transport that fired this
// turn.
func (p *Player) convey(w *World) {
	t, ok := w.CellAt(p.Pos)
	if !ok {
		return
	}
	if tr, ok := t.Transport(); ok && tr.Fired {
		p.move(w, tr.Dir)
	}
}
