package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/pthm-cable/sprout/world"
)

// TurnEntry is one line of the turn log. Turn is World.Time() after the
// step, the same number its events carry.
type TurnEntry struct {
	Turn     int           `json:"turn"`
	Action   string        `json:"action,omitempty"`
	ActionOK bool          `json:"action_ok"`
	PlayerX  int           `json:"player_x"`
	PlayerY  int           `json:"player_y"`
	Water    float64       `json:"water"`
	Sugar    float64       `json:"sugar"`
	Outcome  string        `json:"outcome"`
	Events   []EventRecord `json:"events,omitempty"`
}

// TurnLog writes one zstd-compressed JSONL entry per turn. Events observed
// between two WriteTurn calls are attached to the later entry.
type TurnLog struct {
	path string

	mu      sync.Mutex
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	pending []EventRecord
}

// NewTurnLog creates the log file at path, truncating any previous one.
func NewTurnLog(path string) (*TurnLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating turn log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating turn log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &TurnLog{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Path returns the log file path.
func (l *TurnLog) Path() string { return l.path }

// Observe buffers a world event. Register it with World.OnEvent.
func (l *TurnLog) Observe(e world.Event) {
	l.mu.Lock()
	l.pending = append(l.pending, NewEventRecord(e))
	l.mu.Unlock()
}

// WriteTurn appends the entry for the turn w just completed.
func (l *TurnLog) WriteTurn(w *world.World) error {
	p := w.Player()
	entry := TurnEntry{
		Turn:    w.Time(),
		PlayerX: p.Pos.X,
		PlayerY: p.Pos.Y,
		Water:   p.Inv.Water(),
		Sugar:   p.Inv.Sugar(),
		Outcome: w.CheckWinLoss().String(),
	}
	if a, ok := p.LastResult(); a != nil {
		entry.Action = a.String()
		entry.ActionOK = ok
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return fmt.Errorf("turn log %s is closed", l.path)
	}
	entry.Events = l.pending
	l.pending = nil

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling turn %d: %w", entry.Turn, err)
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

// Close flushes the encoder and closes the file.
func (l *TurnLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.w != nil {
		err = l.w.Flush()
		l.w = nil
	}
	if l.enc != nil {
		if cerr := l.enc.Close(); err == nil {
			err = cerr
		}
		l.enc = nil
	}
	if l.f != nil {
		if cerr := l.f.Close(); err == nil {
			err = cerr
		}
		l.f = nil
	}
	return err
}

// ReadTurnLog decodes every entry of a turn log.
func ReadTurnLog(path string) ([]TurnEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var out []TurnEntry
	for sc.Scan() {
		var entry TurnEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", filepath.Base(path), len(out)+1, err)
		}
		out = append(out, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}
