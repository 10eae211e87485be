package world

import (
	"math"

	"github.com/pthm-cable/sprout/components"
)

// CO2 clamp range. The lower bound keeps the ideal water ratio finite.
const (
	minCO2 = 0.05
	maxCO2 = 1.0
)

// ComputeSunlight sweeps the grid from the top row down. Each Air tile
// blends the light of the tile straight above and of its upper-left and
// upper-right neighbors, weighted by a sun that swings left to right over
// the configured period. Non-Air tiles hold no light and pass none on. The
// floor is reapplied on every row so deep air is never fully dark.
func (w *World) ComputeSunlight() {
	cfg := w.cfg.Sunlight
	floor := cfg.MinLight

	s := 0.0
	if cfg.Period > 0 {
		s = math.Sin(2 * math.Pi * float64(w.time) / cfg.Period)
	}
	fromLeft := math.Max(0, s)
	fromRight := math.Max(0, -s)
	fromAbove := 1 - math.Abs(s)

	for y := 0; y < w.height; y++ {
		for x := 0; x < w.width; x++ {
			i := y*w.width + x
			if w.effectiveKind(i) != components.KindAir {
				w.sunlight[i] = 0
				continue
			}
			if y == 0 {
				w.sunlight[i] = 1
				continue
			}
			up := w.sunlight[i-w.width]
			left, right := up, up
			if x > 0 {
				left = w.sunlight[i-w.width-1]
			}
			if x+1 < w.width {
				right = w.sunlight[i-w.width+1]
			}
			blend := fromAbove*up + fromLeft*left + fromRight*right
			w.sunlight[i] = floor + (1-floor)*blend
		}
	}
}

func (w *World) effectiveKind(i int) components.TileKind {
	if w.occupied[i] {
		return w.handle(w.cells[i]).Kind()
	}
	return w.handle(w.env[i]).Kind()
}

// SunlightAt returns the light level at pos, 0 for anything but Air.
func (w *World) SunlightAt(pos Vec) float64 {
	if !w.InBounds(pos) {
		return 0
	}
	return w.sunlight[w.index(pos)]
}

// Co2At returns the CO2 concentration of the air at pos for the current
// turn: a base level rising with depth plus slowly drifting noise.
func (w *World) Co2At(pos Vec) float64 {
	cfg := w.cfg.CO2
	ground := float64(w.cfg.Derived.GroundY)
	if ground <= 0 {
		ground = float64(w.height)
	}
	depth := float64(pos.Y) / ground
	noise := w.co2Noise.Eval3(
		float64(pos.X)*cfg.NoiseScale,
		float64(pos.Y)*cfg.NoiseScale,
		float64(w.time)*cfg.TimeScale,
	)
	v := cfg.Base + cfg.DepthFactor*depth + cfg.NoiseAmplitude*noise
	return math.Max(minCO2, math.Min(maxCO2, v))
}
