package crafting

import "sort"

// Inventory maps item IDs to on-hand quantities.
type Inventory map[string]int

// Clone returns an independent copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for id, qty := range inv {
		out[id] = qty
	}
	return out
}

// Get returns the quantity held for id, 0 if absent.
func (inv Inventory) Get(id string) int {
	return inv[id]
}

// Covers reports whether the inventory holds at least the given quantities.
func (inv Inventory) Covers(need map[string]int) bool {
	for id, qty := range need {
		if inv[id] < qty {
			return false
		}
	}
	return true
}

// Positive returns the IDs holding a positive quantity, sorted.
func (inv Inventory) Positive() []string {
	ids := make([]string, 0, len(inv))
	for id, qty := range inv {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Add increases the quantity of id by qty.
func (inv Inventory) Add(id string, qty int) {
	inv[id] += qty
}

// Deduct removes qty of id. If that would go below zero the quantity is
// clamped to zero and the missing amount is returned.
func (inv Inventory) Deduct(id string, qty int) (shortfall int) {
	remaining := inv[id] - qty
	if remaining < 0 {
		inv[id] = 0
		return -remaining
	}
	inv[id] = remaining
	return 0
}
