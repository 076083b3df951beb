package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicRecipe is matched by every *CyclicRecipeError.
	ErrCyclicRecipe = errors.New("cyclic recipe")

	// ErrInvalidInventory is returned when an inventory holds a negative quantity.
	ErrInvalidInventory = errors.New("invalid inventory")
)

// CyclicRecipeError reports a recipe that transitively requires itself, or a
// requirement tree deeper than the configured limit.
type CyclicRecipeError struct {
	Path []string

	// MaxDepth is set when the depth limit was hit rather than a true cycle.
	MaxDepth int
}

func (e *CyclicRecipeError) Error() string {
	if e.MaxDepth > 0 {
		return fmt.Sprintf("recipe nesting exceeds depth %d: %s", e.MaxDepth, strings.Join(e.Path, " -> "))
	}
	return "cyclic recipe: " + strings.Join(e.Path, " -> ")
}

func (e *CyclicRecipeError) Is(target error) bool {
	return target == ErrCyclicRecipe
}

// guardPath fails when id is already on the resolution path or the path is too deep.
func guardPath(path []string, id string, maxDepth int) error {
	for i, p := range path {
		if p == id {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return &CyclicRecipeError{Path: append(cycle, id)}
		}
	}
	if maxDepth > 0 && len(path) >= maxDepth {
		full := make([]string, 0, len(path)+1)
		full = append(full, path...)
		return &CyclicRecipeError{Path: append(full, id), MaxDepth: maxDepth}
	}
	return nil
}
