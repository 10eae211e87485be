package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/sprout/action"
	"github.com/pthm-cable/sprout/components"
)

func TestTurnLogRoundTrip(t *testing.T) {
	w := smallWorld()
	path := filepath.Join(t.TempDir(), "logs", "turns.jsonl.zst")
	log, err := NewTurnLog(path)
	if err != nil {
		t.Fatalf("NewTurnLog: %v", err)
	}
	w.OnEvent(log.Observe)

	w.Player().SetAction(action.Build{Kind: components.KindTissue, Pos: components.Vec{X: 3, Y: 3}})
	w.Step()
	if err := log.WriteTurn(w); err != nil {
		t.Fatalf("WriteTurn: %v", err)
	}
	w.Step()
	if err := log.WriteTurn(w); err != nil {
		t.Fatalf("WriteTurn: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := ReadTurnLog(path)
	if err != nil {
		t.Fatalf("ReadTurnLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Turn != 1 || first.Action != "build tissue 3 3" || !first.ActionOK {
		t.Errorf("unexpected first entry %+v", first)
	}
	if first.PlayerX != 3 || first.PlayerY != 3 {
		t.Errorf("player should be on the new tissue, got (%d,%d)", first.PlayerX, first.PlayerY)
	}
	if len(first.Events) != 1 || first.Events[0].Kind != "build" || first.Events[0].Tile != "Tissue" {
		t.Fatalf("expected one build event, got %+v", first.Events)
	}
	if first.Events[0].Turn != first.Turn {
		t.Errorf("event turn %d should match entry turn %d", first.Events[0].Turn, first.Turn)
	}

	second := entries[1]
	if second.Action != "none" || len(second.Events) != 0 {
		t.Errorf("idle turn should have no events, got %+v", second)
	}
}

func TestTurnLogWriteAfterClose(t *testing.T) {
	log, err := NewTurnLog(filepath.Join(t.TempDir(), "turns.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}
	if err := log.WriteTurn(smallWorld()); err == nil {
		t.Error("expected an error writing to a closed log")
	}
}
