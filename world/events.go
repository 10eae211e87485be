package world

import "github.com/pthm-cable/sprout/components"

// EventKind identifies a world event.
type EventKind uint8

const (
	EventBuild        EventKind = iota // Player built a cell
	EventDeconstruct                   // Player removed a cell
	EventDeath                         // A cell ran out of energy
	EventShift                         // A drooping cell dropped one row
	EventMature                        // A growing cell reached its final kind
	EventActionFailed                  // A player action was rejected
)

var eventKindNames = [...]string{"build", "deconstruct", "death", "shift", "mature", "action_failed"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is delivered to listeners registered with OnEvent. Turn is the
// number of the turn in progress, counting from 1, so it equals Time()
// once that Step returns.
type Event struct {
	Kind   EventKind
	Tile   components.TileKind
	Pos    Vec
	Turn   int
	Detail string
}

// OnEvent registers a listener. Listeners observe the simulation and must
// not mutate it.
func (w *World) OnEvent(fn func(Event)) {
	w.listeners = append(w.listeners, fn)
}

func (w *World) emit(e Event) {
	e.Turn = w.time + 1
	for _, fn := range w.listeners {
		fn(e)
	}
}
