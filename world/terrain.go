package world

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/sprout/components"
)

// startClearance is the half-width of the rock-free shaft around the
// starting column.
const startClearance = 2

// generateTerrain lays out the environment layer, seeds the starting tissue
// column and puts the player on top of it.
func (w *World) generateTerrain() {
	cfg := w.cfg.Terrain
	groundY := w.groundY()
	noise := opensimplex.New(w.cfg.World.Seed)

	kinds := make([]components.TileKind, w.width*w.height)

	// 1. Air above ground, soil below
	for y := groundY; y < w.height; y++ {
		for x := 0; x < w.width; x++ {
			kinds[y*w.width+x] = components.KindSoil
		}
	}

	// 2. Rock where 2D noise rises above the threshold
	startX := w.width / 2
	for y := groundY + 1; y < w.height; y++ {
		for x := 0; x < w.width; x++ {
			if abs(x-startX) <= startClearance {
				continue
			}
			v := noise.Eval2(float64(x)*cfg.NoiseScale, float64(y)*cfg.NoiseScale)
			if v > cfg.RockThreshold {
				kinds[y*w.width+x] = components.KindRock
			}
		}
	}

	// 3. Fountains on random soil tiles
	for placed, tries := 0, 0; placed < cfg.FountainCount && tries < 100*cfg.FountainCount; tries++ {
		if groundY+1 >= w.height {
			break
		}
		x := w.rng.Intn(w.width)
		y := groundY + 1 + w.rng.Intn(w.height-groundY-1)
		i := y*w.width + x
		if kinds[i] != components.KindSoil {
			continue
		}
		kinds[i] = components.KindFountain
		placed++
	}

	// 4. Instantiate the environment layer
	for i, kind := range kinds {
		pos := w.posOf(i)
		t := w.NewTile(kind, pos)
		if kind == components.KindSoil {
			t.Inventory().Add(cfg.SoilWater, 0)
		}
		w.env[i] = t.Entity
	}

	// 5. Starting tissue column, player on top
	for i := 0; i < cfg.StartTissue; i++ {
		pos := Vec{startX, groundY + i}
		if !w.InBounds(pos) {
			break
		}
		w.Place(pos, components.KindTissue)
	}
	w.player.Pos = Vec{startX, groundY}
	w.renderDirty = true
}

// groundY returns the first soil row, clamped to the grid.
func (w *World) groundY() int {
	y := w.cfg.Derived.GroundY
	if y >= w.height {
		y = w.height - 1
	}
	if y < 1 {
		y = 1
	}
	return y
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
