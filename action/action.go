// Package action defines the closed set of player intents consumed by the
// world. Input handling and path following produce actions; only the
// player resolves them.
package action

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/sprout/components"
)

// Action is a player intent. The set is closed: only the types in this
// package implement it.
type Action interface {
	isAction()
	String() string
}

// Still keeps the player in place for a turn. Unlike None it also opts out
// of being carried by a transport.
type Still struct{}

// None is the absence of an intent.
type None struct{}

// Move steps the player one tile in Dir.
type Move struct {
	Dir components.Vec
}

// Build places a new cell of Kind at Pos.
type Build struct {
	Kind components.TileKind
	Pos  components.Vec
}

// BuildTransport places a transport at Pos facing Dir and walks the player
// one step in Dir.
type BuildTransport struct {
	Kind components.TileKind
	Pos  components.Vec
	Dir  components.Vec
}

// Deconstruct removes the cell at Pos. Force allows removing the cell the
// player stands on.
type Deconstruct struct {
	Pos   components.Vec
	Force bool
}

// Drop swaps resources with the tile under the player.
type Drop struct {
	Water float64
	Sugar float64
}

// Multiple resolves every sub-action in order.
type Multiple struct {
	Actions []Action
}

func (Still) isAction() {}
func (None) isAction() {}
func (Move) isAction() {}
func (Build) isAction() {}
func (BuildTransport) isAction() {}
func (Deconstruct) isAction() {}
func (Drop) isAction() {}
func (Multiple) isAction() {}

func (Still) String() string { return "still" }
func (None) String() string  { return "none" }

func (a Move) String() string {
	return fmt.Sprintf("move %d %d", a.Dir.X, a.Dir.Y)
}

func (a Build) String() string {
	return fmt.Sprintf("build %s %d %d", strings.ToLower(a.Kind.String()), a.Pos.X, a.Pos.Y)
}

func (a BuildTransport) String() string {
	return fmt.Sprintf("transport %d %d %d %d", a.Pos.X, a.Pos.Y, a.Dir.X, a.Dir.Y)
}

func (a Deconstruct) String() string {
	if a.Force {
		return fmt.Sprintf("deconstruct %d %d force", a.Pos.X, a.Pos.Y)
	}
	return fmt.Sprintf("deconstruct %d %d", a.Pos.X, a.Pos.Y)
}

func (a Drop) String() string {
	return fmt.Sprintf("drop %g %g", a.Water, a.Sugar)
}

func (a Multiple) String() string {
	parts := make([]string, len(a.Actions))
	for i, sub := range a.Actions {
		parts[i] = sub.String()
	}
	return strings.Join(parts, "; ")
}

// FromPath converts a list of positions into move actions between
// consecutive entries. The first entry is the starting position.
func FromPath(path []components.Vec) []Action {
	if len(path) < 2 {
		return nil
	}
	out := make([]Action, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		out = append(out, Move{Dir: path[i].Sub(path[i-1])})
	}
	return out
}
