package components

import "strings"

// String returns the display name for a TileKind.
func (k TileKind) String() string {
	names := TileKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// TileKindNames returns the display names for all tile kinds.
// The order matches the TileKind constants.
func TileKindNames() []string {
	return []string{
		"Air", "Soil", "Fountain", "Rock", "DeadCell",
		"Tissue", "Leaf", "Root", "Fruit", "Transport", "Growing",
	}
}

// TileKindCount returns the number of tile kinds.
func TileKindCount() int {
	return len(TileKindNames())
}

// CellKinds returns the kinds a player can build, in display order.
func CellKinds() []TileKind {
	return []TileKind{KindTissue, KindLeaf, KindRoot, KindFruit, KindTransport}
}

// ParseTileKind looks up a kind by case-insensitive name.
func ParseTileKind(name string) (TileKind, bool) {
	name = strings.TrimSpace(name)
	for i, n := range TileKindNames() {
		if strings.EqualFold(n, name) {
			return TileKind(i), true
		}
	}
	return 0, false
}
