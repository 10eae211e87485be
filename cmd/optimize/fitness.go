package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/game"
	"github.com/pthm-cable/sprout/telemetry"
	"github.com/pthm-cable/sprout/world"
)

// FitnessEvaluator runs headless grower sessions and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTurns   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastWins    int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTurns int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTurns:   maxTurns,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastWins returns how many seeds of the most recent evaluation were won.
func (fe *FitnessEvaluator) LastWins() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWins
}

// runResult holds the results from a single session.
type runResult struct {
	outcome     world.Outcome
	turns       int
	fruitSugar  float64
	windowStats []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	wins := 0
	for _, r := range results {
		quality := computeQuality(r.windowStats, cfg.Cell.EnergyMax)
		totalFitness += fe.computeFitness(r, cfg, quality)
		totalQuality += quality
		if r.outcome == world.Win {
			wins++
		}
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastWins = wins
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation plays one seed until the game is decided or maxTurns.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Config:   cfg,
		Seed:     seed,
		MaxTurns: fe.maxTurns,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		slog.Error("failed to start session", "seed", seed, "error", err)
		return result
	}
	defer g.Close()

	result.outcome, _ = g.Run(context.Background())
	result.turns = g.Turn()
	if fruit, ok := g.World().Fruit(); ok && fruit.Inventory() != nil {
		result.fruitSugar = fruit.Inventory().Sugar()
	}
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// A win scores 2 plus a bonus for finishing early; otherwise the score is
// the fruit's progress toward the win threshold. Losing forfeits progress.
// Quality adds up to 10% on top.
func (fe *FitnessEvaluator) computeFitness(r *runResult, cfg *config.Config, quality float64) float64 {
	var score float64
	switch r.outcome {
	case world.Win:
		score = 2 + (1 - float64(r.turns)/float64(fe.maxTurns))
	case world.Lose:
		score = 0
	default:
		score = clamp01(r.fruitSugar / cfg.Win.FruitSugar)
	}
	return -(score * (1.0 + 0.1*quality))
}

// qualityWarmupWindows skips the first windows while the plant is tiny.
const qualityWarmupWindows = 1

// computeQuality scores plant health in [0, 1]: the median cell energy
// relative to the maximum, averaged over windows.
func computeQuality(windows []telemetry.WindowStats, energyMax float64) float64 {
	if len(windows) <= qualityWarmupWindows || energyMax <= 0 {
		return 0
	}
	var sum float64
	var count int
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Cells == 0 {
			continue
		}
		sum += w.EnergyP50 / energyMax
		count++
	}
	if count == 0 {
		return 0
	}
	return clamp01(sum / float64(count))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
