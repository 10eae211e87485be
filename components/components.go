// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/sprout/inventory"

// TileKind identifies the variant of a tile.
type TileKind uint8

const (
	KindAir TileKind = iota
	KindSoil
	KindFountain
	KindRock
	KindDeadCell
	KindTissue
	KindLeaf
	KindRoot
	KindFruit
	KindTransport
	KindGrowing
)

// IsCell reports whether the kind lives in the cell overlay.
func (k TileKind) IsCell() bool { return k >= KindTissue }

// IsObstacle reports whether the kind blocks building and light.
func (k TileKind) IsObstacle() bool { return k == KindRock }

// IsWalkable reports whether the player may stand on the kind.
func (k TileKind) IsWalkable() bool { return k == KindTissue || k == KindTransport }

// IsConductive reports whether the kind is a cell that carries a ledger
// shared with its neighbors (tissue, transport and root).
func (k TileKind) IsConductive() bool {
	return k == KindTissue || k == KindTransport || k == KindRoot
}

// IsGround reports whether the kind supports cells resting on it.
func (k TileKind) IsGround() bool {
	return k == KindRock || k == KindSoil || k == KindFountain
}

// HasInventory reports whether tiles of this kind own a ledger.
func (k TileKind) HasInventory() bool {
	switch k {
	case KindSoil, KindFountain, KindTissue, KindTransport, KindRoot, KindFruit:
		return true
	}
	return false
}

// Tile is carried by every grid entity.
type Tile struct {
	Kind     TileKind
	Pos      Vec
	Darkness float64
	Inv      *inventory.Inventory // nil for kinds without a ledger
}

// Cell holds the state shared by every living tile.
type Cell struct {
	Energy    float64
	DroopY    float64 // Structural sag; a full row shift happens past 0.5
	SteppedAt int     // Turn this cell last stepped, guards against double steps after a shift
}

// Leaf tracks which neighbor directions formed an Air/tissue pair last turn.
type Leaf struct {
	TilePairs []Vec // Direction of the Air side of each active pair
}

// Root pulls water from adjacent soil on a cooldown.
type Root struct {
	Cooldown        int
	ActiveNeighbors []Vec // Soil directions that gave water on the last pull
}

// Transport pushes resources one step in a fixed direction on a cooldown.
type Transport struct {
	Dir      Vec
	Cooldown int
	Fired    bool // True on turns the conveyor pushed
}

// Growing wraps a cell under construction.
type Growing struct {
	Remaining int      // Turns until maturity
	Target    TileKind // Kind the cell matures into
	Dir       Vec      // Orientation for a maturing transport
}

// Fountain regenerates water on an interval.
type Fountain struct {
	Cooldown int
}
