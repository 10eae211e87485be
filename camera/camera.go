// Package camera provides a viewport onto the tile grid for text rendering.
package camera

// Camera controls a rectangular window into the world grid. The window
// never extends past the world edges.
type Camera struct {
	// Position is the camera center in grid coordinates
	X, Y int

	// Viewport dimensions in tiles
	ViewportW, ViewportH int

	// World dimensions
	WorldW, WorldH int
}

// New creates a camera centered on the world. A viewport larger than the
// world, or zero, is shrunk to the world size.
func New(viewportW, viewportH, worldW, worldH int) *Camera {
	c := &Camera{WorldW: worldW, WorldH: worldH}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// WorldToScreen converts grid coordinates to viewport coordinates and
// reports whether the tile is visible.
func (c *Camera) WorldToScreen(wx, wy int) (sx, sy int, visible bool) {
	minX, minY, _, _ := c.VisibleWorldBounds()
	sx, sy = wx-minX, wy-minY
	return sx, sy, sx >= 0 && sy >= 0 && sx < c.ViewportW && sy < c.ViewportH
}

// ScreenToWorld converts viewport coordinates to grid coordinates.
func (c *Camera) ScreenToWorld(sx, sy int) (wx, wy int) {
	minX, minY, _, _ := c.VisibleWorldBounds()
	return sx + minX, sy + minY
}

// IsVisible checks if a tile is within the viewport.
func (c *Camera) IsVisible(wx, wy int) bool {
	_, _, visible := c.WorldToScreen(wx, wy)
	return visible
}

// Resize updates viewport dimensions and re-clamps the center.
func (c *Camera) Resize(viewportW, viewportH int) {
	if viewportW <= 0 || viewportW > c.WorldW {
		viewportW = c.WorldW
	}
	if viewportH <= 0 || viewportH > c.WorldH {
		viewportH = c.WorldH
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.CenterOn(c.X, c.Y)
}

// CenterOn moves the camera center as close to (x, y) as the world edges
// allow.
func (c *Camera) CenterOn(x, y int) {
	c.X = clamp(x, c.ViewportW/2, c.WorldW-c.ViewportW+c.ViewportW/2)
	c.Y = clamp(y, c.ViewportH/2, c.WorldH-c.ViewportH+c.ViewportH/2)
}

// Pan moves the camera by the given delta in tiles.
func (c *Camera) Pan(dx, dy int) {
	c.CenterOn(c.X+dx, c.Y+dy)
}

// Reset returns the camera to the world center.
func (c *Camera) Reset() {
	c.CenterOn(c.WorldW/2, c.WorldH/2)
}

// VisibleWorldBounds returns the grid bounds of the visible area. The max
// bounds are exclusive.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY int) {
	minX = c.X - c.ViewportW/2
	minY = c.Y - c.ViewportH/2
	return minX, minY, minX + c.ViewportW, minY + c.ViewportH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
