// Package inventory implements the bounded two-resource ledger owned by
// tiles and the player. All resource movement goes through Give or Add.
package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// scale sets the 1e-12 rounding grid applied after every mutation to absorb
// floating point drift.
const scale = 1e12

// ErrSelfGive is returned when an inventory is asked to give to itself.
var ErrSelfGive = errors.New("inventory: cannot give to self")

// EventKind identifies a ledger notification.
type EventKind uint8

const (
	EventGive EventKind = iota // Resources left this inventory
	EventGet                   // Resources arrived in this inventory
)

func (k EventKind) String() string {
	if k == EventGive {
		return "give"
	}
	return "get"
}

// Event is delivered to an inventory's listener after a transfer.
// Listeners are presentation hooks and must not mutate the simulation.
type Event struct {
	Kind  EventKind
	Peer  *Inventory
	Water float64
	Sugar float64
}

// Transfer is the amount actually moved by a Give or Add.
type Transfer struct {
	Water float64
	Sugar float64
}

// Empty reports whether nothing moved.
func (t Transfer) Empty() bool {
	return t.Water == 0 && t.Sugar == 0
}

// Inventory holds water and sugar up to a shared capacity.
type Inventory struct {
	capacity float64
	water    float64
	sugar    float64

	carrier  any
	listener func(Event)
}

// New creates an inventory. Initial amounts are clamped into capacity.
func New(capacity, water, sugar float64) *Inventory {
	inv := &Inventory{capacity: capacity, water: water, sugar: sugar}
	inv.validate()
	return inv
}

func (inv *Inventory) Water() float64    { return inv.water }
func (inv *Inventory) Sugar() float64    { return inv.sugar }
func (inv *Inventory) Capacity() float64 { return inv.capacity }

// Space returns the free capacity.
func (inv *Inventory) Space() float64 {
	return math.Max(0, round(inv.capacity-inv.water-inv.sugar))
}

// Carrier returns the owner recorded with SetCarrier, used in log fields.
func (inv *Inventory) Carrier() any { return inv.carrier }

// SetCarrier records the owner of this inventory.
func (inv *Inventory) SetCarrier(c any) { inv.carrier = c }

// SetListener installs a transfer observer. Pass nil to remove it.
func (inv *Inventory) SetListener(fn func(Event)) { inv.listener = fn }

// Give moves up to wantWater/wantSugar from inv to other. The request is
// clamped to what inv holds, then scaled down to fit other's free space.
func (inv *Inventory) Give(other *Inventory, wantWater, wantSugar float64) (Transfer, error) {
	if other == inv {
		return Transfer{}, ErrSelfGive
	}

	water := clampAmount(wantWater, inv.water)
	sugar := clampAmount(wantSugar, inv.sugar)
	water, sugar = fit(water, sugar, other.Space())
	if water == 0 && sugar == 0 {
		return Transfer{}, nil
	}

	inv.water -= water
	inv.sugar -= sugar
	other.water += water
	other.sugar += sugar
	inv.validate()
	other.validate()

	t := Transfer{Water: water, Sugar: sugar}
	inv.notify(EventGive, other, t)
	other.notify(EventGet, inv, t)
	return t, nil
}

// Add injects resources from outside any ledger, scaled to fit free space.
func (inv *Inventory) Add(water, sugar float64) Transfer {
	water, sugar = fit(math.Max(0, water), math.Max(0, sugar), inv.Space())
	if water == 0 && sugar == 0 {
		return Transfer{}
	}
	inv.water += water
	inv.sugar += sugar
	inv.validate()

	t := Transfer{Water: water, Sugar: sugar}
	inv.notify(EventGet, nil, t)
	return t
}

// Change applies a raw delta and then clamps the result into bounds.
func (inv *Inventory) Change(water, sugar float64) {
	inv.water += water
	inv.sugar += sugar
	inv.validate()
}

// String implements fmt.Stringer.
func (inv *Inventory) String() string {
	return fmt.Sprintf("water=%.3f sugar=%.3f cap=%.0f", inv.water, inv.sugar, inv.capacity)
}

func (inv *Inventory) notify(kind EventKind, peer *Inventory, t Transfer) {
	if inv.listener != nil {
		inv.listener(Event{Kind: kind, Peer: peer, Water: t.Water, Sugar: t.Sugar})
	}
}

// validate rounds both resources and repairs any bound violation.
func (inv *Inventory) validate() {
	inv.water = round(inv.water)
	inv.sugar = round(inv.sugar)

	if inv.water < 0 {
		slog.Warn("inventory: negative water", "carrier", inv.carrier, "water", inv.water)
		inv.water = 0
	}
	if inv.sugar < 0 {
		slog.Warn("inventory: negative sugar", "carrier", inv.carrier, "sugar", inv.sugar)
		inv.sugar = 0
	}
	if round(inv.water+inv.sugar) > inv.capacity {
		slog.Warn("inventory: over capacity",
			"carrier", inv.carrier,
			"water", inv.water,
			"sugar", inv.sugar,
			"capacity", inv.capacity,
		)
		// Keep the larger resource intact.
		if inv.water >= inv.sugar {
			inv.water = math.Min(inv.water, inv.capacity)
			inv.sugar = round(inv.capacity - inv.water)
		} else {
			inv.sugar = math.Min(inv.sugar, inv.capacity)
			inv.water = round(inv.capacity - inv.sugar)
		}
	}
}

// fit scales a water/sugar pair down to space. When scaling is needed both
// amounts are floored to whole units, so at most one unit is left behind.
func fit(water, sugar, space float64) (float64, float64) {
	needed := water + sugar
	if needed <= space {
		return water, sugar
	}
	if space <= 0 || needed <= 0 {
		return 0, 0
	}
	ratio := space / needed
	return math.Floor(round(water * ratio)), math.Floor(round(sugar * ratio))
}

func clampAmount(want, have float64) float64 {
	if want <= 0 || have <= 0 {
		return 0
	}
	return math.Min(want, have)
}

func round(v float64) float64 {
	return math.Round(v*scale) / scale
}
