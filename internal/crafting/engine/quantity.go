package engine

import "math"

// MaxQuantity is the largest stock count or craft quantity accepted from
// callers. The request types in pkg/crafting carry the same bound as an
// lte validation tag.
const MaxQuantity = 1_000_000_000

// addQty adds two non-negative quantities, saturating at math.MaxInt.
func addQty(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// mulQty multiplies two non-negative quantities, saturating at math.MaxInt.
func mulQty(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
