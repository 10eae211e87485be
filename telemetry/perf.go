package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/sprout/world"
)

// PerfSample holds timing data for a single turn.
type PerfSample struct {
	TurnDuration time.Duration
	Phases       map[string]time.Duration
	Load         world.StepLoad
}

// PerfCollector tracks step timing over a rolling window. It satisfies
// world.Profiler.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	turnStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

var _ world.Profiler = (*PerfCollector)(nil)

// NewPerfCollector creates a new performance collector averaging over
// windowSize turns.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTurn begins timing a new turn.
func (p *PerfCollector) StartTurn() {
	p.turnStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTurn finishes timing the current turn and records the sample along
// with the work the world reported for it.
func (p *PerfCollector) EndTurn(load world.StepLoad) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TurnDuration: now.Sub(p.turnStart),
		Phases:       p.currentPhases,
		Load:         load,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTurnDuration time.Duration
	MinTurnDuration time.Duration
	MaxTurnDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total turn time
	PhasePct map[string]float64

	TurnsPerSecond float64

	// Tiles phase cost against the grid it walked
	AvgCells        float64       // Live cells stepped per turn
	TileCostPerPos  time.Duration // Tiles phase time per grid position
	TileCostPerCell time.Duration // Tiles phase time per live cell
	LastTurn        int
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minTurn, maxTurn time.Duration
	var cells, positions int
	lastTurn := 0
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TurnDuration

		if i == 0 || s.TurnDuration < minTurn {
			minTurn = s.TurnDuration
		}
		if s.TurnDuration > maxTurn {
			maxTurn = s.TurnDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
		cells += s.Load.Cells
		positions += s.Load.Tiles
		if s.Load.Turn > lastTurn {
			lastTurn = s.Load.Turn
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	tiles := phaseSum[world.PhaseTiles]
	var perPos, perCell time.Duration
	if positions > 0 {
		perPos = tiles / time.Duration(positions)
	}
	if cells > 0 {
		perCell = tiles / time.Duration(cells)
	}

	return PerfStats{
		AvgTurnDuration: avg,
		MinTurnDuration: minTurn,
		MaxTurnDuration: maxTurn,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TurnsPerSecond:  perSec,
		AvgCells:        float64(cells) / float64(p.sampleCount),
		TileCostPerPos:  perPos,
		TileCostPerCell: perCell,
		LastTurn:        lastTurn,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_turn_us", s.AvgTurnDuration.Microseconds(),
		"min_turn_us", s.MinTurnDuration.Microseconds(),
		"max_turn_us", s.MaxTurnDuration.Microseconds(),
		"turns_per_sec", int(s.TurnsPerSecond),
		"avg_cells", int(s.AvgCells),
		"tiles_ns_per_cell", s.TileCostPerCell.Nanoseconds(),
	}

	for _, phase := range []string{world.PhaseTiles, world.PhasePlayer, world.PhaseSunlight} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_turn_us", s.AvgTurnDuration.Microseconds()),
		slog.Int64("min_turn_us", s.MinTurnDuration.Microseconds()),
		slog.Int64("max_turn_us", s.MaxTurnDuration.Microseconds()),
		slog.Float64("turns_per_sec", s.TurnsPerSecond),
		slog.Float64("avg_cells", s.AvgCells),
		slog.Int64("tiles_ns_per_pos", s.TileCostPerPos.Nanoseconds()),
		slog.Int64("tiles_ns_per_cell", s.TileCostPerCell.Nanoseconds()),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd   int     `csv:"window_end"`
	AvgTurnUS   int64   `csv:"avg_turn_us"`
	MinTurnUS   int64   `csv:"min_turn_us"`
	MaxTurnUS   int64   `csv:"max_turn_us"`
	TurnsPerSec float64 `csv:"turns_per_sec"`
	TilesPct    float64 `csv:"tiles_pct"`
	PlayerPct   float64 `csv:"player_pct"`
	SunlightPct float64 `csv:"sunlight_pct"`
	AvgCells    float64 `csv:"avg_cells"`
	TilesNSPos  int64   `csv:"tiles_ns_per_pos"`
	TilesNSCell int64   `csv:"tiles_ns_per_cell"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgTurnUS:   s.AvgTurnDuration.Microseconds(),
		MinTurnUS:   s.MinTurnDuration.Microseconds(),
		MaxTurnUS:   s.MaxTurnDuration.Microseconds(),
		TurnsPerSec: s.TurnsPerSecond,
		TilesPct:    s.PhasePct[world.PhaseTiles],
		PlayerPct:   s.PhasePct[world.PhasePlayer],
		SunlightPct: s.PhasePct[world.PhaseSunlight],
		AvgCells:    s.AvgCells,
		TilesNSPos:  s.TileCostPerPos.Nanoseconds(),
		TilesNSCell: s.TileCostPerCell.Nanoseconds(),
	}
}
