// Package telemetry provides per-window statistics, CSV output, a compressed
// per-turn log and step timing for headless runs.
package telemetry

import "github.com/pthm-cable/sprout/world"

// EventRecord is the serialized form of a world event.
type EventRecord struct {
	Turn   int    `json:"turn"`
	Kind   string `json:"kind"`
	Tile   string `json:"tile"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Detail string `json:"detail,omitempty"`
}

// NewEventRecord converts a world event for logging.
func NewEventRecord(e world.Event) EventRecord {
	return EventRecord{
		Turn:   e.Turn,
		Kind:   e.Kind.String(),
		Tile:   e.Tile.String(),
		X:      e.Pos.X,
		Y:      e.Pos.Y,
		Detail: e.Detail,
	}
}
