// Package autoplay chooses the player's action each turn without human
// input.
package autoplay

import (
	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/world"
)

// Controller picks the next action. Returning nil leaves the player idle,
// which lets a transport carry it.
type Controller interface {
	Next(w *world.World) action.Action
}

// Script replays a fixed list of actions, one per turn.
type Script struct {
	actions []action.Action
	next    int
}

// NewScript creates a controller that plays actions in order.
func NewScript(actions []action.Action) *Script {
	return &Script{actions: actions}
}

// Next returns the next scripted action, or nil once exhausted.
func (s *Script) Next(*world.World) action.Action {
	if s.next >= len(s.actions) {
		return nil
	}
	a := s.actions[s.next]
	s.next++
	return a
}

// Done reports whether every action has been played.
func (s *Script) Done() bool { return s.next >= len(s.actions) }
