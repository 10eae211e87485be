package components

// Vec is an integer grid position or direction. Y grows downward, so row 0
// is the top of the world.
type Vec struct {
	X, Y int
}

// Compass directions.
var (
	North     = Vec{0, -1}
	NorthEast = Vec{1, -1}
	East      = Vec{1, 0}
	SouthEast = Vec{1, 1}
	South     = Vec{0, 1}
	SouthWest = Vec{-1, 1}
	West      = Vec{-1, 0}
	NorthWest = Vec{-1, -1}
)

// Directions lists the 8 neighbor offsets clockwise from north.
var Directions = [8]Vec{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Neg() Vec      { return Vec{-v.X, -v.Y} }

// IsZero reports whether v is the zero vector.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsDiagonal reports whether v is one of the four diagonal unit steps.
func (v Vec) IsDiagonal() bool { return v.X != 0 && v.Y != 0 }

// Chebyshev returns the king-move distance between v and o.
func (v Vec) Chebyshev(o Vec) int {
	dx, dy := abs(v.X-o.X), abs(v.Y-o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsUnit reports whether v is one of the 8 neighbor offsets.
func (v Vec) IsUnit() bool {
	return !v.IsZero() && abs(v.X) <= 1 && abs(v.Y) <= 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
