package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of turns.
type WindowStats struct {
	WindowStartTurn int    `csv:"-"`
	WindowEndTurn   int    `csv:"window_end"`
	Outcome         string `csv:"outcome"`

	// Cell counts at window end
	Cells     int `csv:"cells"`
	Tissue    int `csv:"tissue"`
	Leaves    int `csv:"leaves"`
	Roots     int `csv:"roots"`
	Transport int `csv:"transport"`
	Growing   int `csv:"growing"`
	Fruit     int `csv:"fruit"`

	// Events during window
	Builds        int `csv:"builds"`
	Deconstructs  int `csv:"deconstructs"`
	Deaths        int `csv:"deaths"`
	Shifts        int `csv:"shifts"`
	Matures       int `csv:"matures"`
	FailedActions int `csv:"failed_actions"`

	// Lifespan of built cells that died or were removed during window
	LifespanMean float64 `csv:"lifespan_mean"`
	LifespanMax  int     `csv:"lifespan_max"`

	// Cell energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Resource pools
	TotalWater  float64 `csv:"total_water"` // All ledgers, player included
	TotalSugar  float64 `csv:"total_sugar"`
	FruitSugar  float64 `csv:"fruit_sugar"`
	PlayerWater float64 `csv:"player_water"`
	PlayerSugar float64 `csv:"player_sugar"`
}

// ComputeEnergyStats calculates mean, sample standard deviation and
// empirical percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		mean = sorted[0]
	} else {
		mean, std = stat.MeanStdDev(sorted, nil)
	}

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTurn),
		slog.Int("window_end", s.WindowEndTurn),
		slog.String("outcome", s.Outcome),
		slog.Int("cells", s.Cells),
		slog.Int("tissue", s.Tissue),
		slog.Int("leaves", s.Leaves),
		slog.Int("roots", s.Roots),
		slog.Int("transport", s.Transport),
		slog.Int("growing", s.Growing),
		slog.Int("fruit", s.Fruit),
		slog.Int("builds", s.Builds),
		slog.Int("deconstructs", s.Deconstructs),
		slog.Int("deaths", s.Deaths),
		slog.Int("shifts", s.Shifts),
		slog.Int("matures", s.Matures),
		slog.Int("failed_actions", s.FailedActions),
		slog.Float64("lifespan_mean", s.LifespanMean),
		slog.Int("lifespan_max", s.LifespanMax),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("total_water", s.TotalWater),
		slog.Float64("total_sugar", s.TotalSugar),
		slog.Float64("fruit_sugar", s.FruitSugar),
		slog.Float64("player_water", s.PlayerWater),
		slog.Float64("player_sugar", s.PlayerSugar),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTurn,
		"outcome", s.Outcome,
		"cells", s.Cells,
		"leaves", s.Leaves,
		"roots", s.Roots,
		"builds", s.Builds,
		"deaths", s.Deaths,
		"shifts", s.Shifts,
		"failed_actions", s.FailedActions,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"total_water", s.TotalWater,
		"total_sugar", s.TotalSugar,
		"fruit_sugar", s.FruitSugar,
	)
}
