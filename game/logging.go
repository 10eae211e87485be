package game

import (
	"log/slog"
	"strings"

	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/world"
)

// logWorldState logs a summary of the current world.
func (g *Game) logWorldState() {
	w := g.world
	counts := w.CountCells()
	water, sugar := w.Totals()

	var fruitSugar float64
	if fruit, ok := w.Fruit(); ok && fruit.Inventory() != nil {
		fruitSugar = fruit.Inventory().Sugar()
	}

	p := w.Player()
	slog.Info("world state",
		"turn", w.Time(),
		"outcome", g.outcome.String(),
		"tissue", counts[components.KindTissue],
		"leaves", counts[components.KindLeaf],
		"roots", counts[components.KindRoot],
		"transport", counts[components.KindTransport],
		"growing", counts[components.KindGrowing],
		"fruit_sugar", fruitSugar,
		"total_water", water,
		"total_sugar", sugar,
		"player_x", p.Pos.X,
		"player_y", p.Pos.Y,
		"player_water", p.Inv.Water(),
		"player_sugar", p.Inv.Sugar(),
	)
}

// glyphs maps tile kinds to the characters used by RenderASCII.
var glyphs = map[components.TileKind]byte{
	components.KindAir:       ' ',
	components.KindSoil:      '.',
	components.KindFountain:  '~',
	components.KindRock:      '#',
	components.KindDeadCell:  'x',
	components.KindTissue:    '|',
	components.KindLeaf:      'L',
	components.KindRoot:      'r',
	components.KindFruit:     'F',
	components.KindTransport: '>',
	components.KindGrowing:   '+',
}

// RenderASCII draws the effective tile of every position, one row per
// line, with the player as '@'.
func RenderASCII(w *world.World) string {
	return RenderViewport(w, camera.New(w.Width(), w.Height(), w.Width(), w.Height()))
}

// RenderViewport draws the part of the grid visible through cam.
func RenderViewport(w *world.World, cam *camera.Camera) string {
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	var sb strings.Builder
	sb.Grow((maxX - minX + 1) * (maxY - minY))
	p := w.Player().Pos
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			if p.X == x && p.Y == y {
				sb.WriteByte('@')
				continue
			}
			t, _ := w.TileAt(x, y)
			c, ok := glyphs[t.Kind()]
			if !ok {
				c = '?'
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
