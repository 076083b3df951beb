package engine

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Snapshot is a read-only view of an inventory at one point in a run.
type Snapshot struct {
	stock       crafting.Inventory
	fingerprint uint64
}

// NewSnapshot copies inv. Later changes to inv do not affect the snapshot.
func NewSnapshot(inv crafting.Inventory) Snapshot {
	stock := make(crafting.Inventory, len(inv))
	for id, qty := range inv {
		if qty > 0 {
			stock[id] = qty
		}
	}
	return Snapshot{stock: stock, fingerprint: fingerprint(stock)}
}

// fingerprint hashes the sorted positive entries so equal stock yields equal keys.
func fingerprint(stock crafting.Inventory) uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 64)
	for _, id := range stock.Positive() {
		buf = buf[:0]
		buf = append(buf, id...)
		buf = append(buf, '=')
		buf = strconv.AppendInt(buf, int64(stock[id]), 10)
		buf = append(buf, ';')
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// Get returns the stock of id.
func (s Snapshot) Get(id string) int {
	return s.stock[id]
}

// Covers reports whether the snapshot holds at least need.
func (s Snapshot) Covers(need map[string]int) bool {
	return s.stock.Covers(need)
}

// Fingerprint identifies the snapshot contents.
func (s Snapshot) Fingerprint() uint64 {
	return s.fingerprint
}

// Inventory returns a mutable copy of the snapshot.
func (s Snapshot) Inventory() crafting.Inventory {
	return s.stock.Clone()
}
