// Package ordering maintains the dense, zero-based order field of sibling
// records (set groups under a routine day or session, sets under a set group).
package ordering

import (
	"fmt"

	"github.com/soodoh/openfit/internal/apperr"
)

// ParentKind identifies the owner of a sibling collection.
type ParentKind string

const (
	ParentRoutineDay ParentKind = "routine_day"
	ParentSession    ParentKind = "session"
	ParentSetGroup   ParentKind = "set_group"
)

// Key returns the lock key of the sibling collection owned by the given parent.
// All writers touching the collection serialize on this key.
func Key(kind ParentKind, id fmt.Stringer) string {
	return string(kind) + ":" + id.String()
}

// Next returns the order value of a sibling appended to a list of n siblings.
func Next(n int) int {
	return n
}

// Reorder validates that ordered is a permutation of current and returns the
// new zero-based index of every id. Nothing is returned on failure, so callers
// can abort before writing.
func Reorder[ID comparable](current, ordered []ID) (map[ID]int, error) {
	const op = "reorder"
	if len(ordered) != len(current) {
		return nil, apperr.New(op, apperr.ErrInvalidReorder,
			"expected %d ids, got %d", len(current), len(ordered))
	}

	known := make(map[ID]bool, len(current))
	for _, id := range current {
		known[id] = true
	}

	positions := make(map[ID]int, len(ordered))
	for i, id := range ordered {
		if !known[id] {
			return nil, apperr.New(op, apperr.ErrInvalidReorder, "id %v is not a sibling", id)
		}
		if _, dup := positions[id]; dup {
			return nil, apperr.New(op, apperr.ErrInvalidReorder, "duplicate id %v", id)
		}
		positions[id] = i
	}

	return positions, nil
}

// Item is a sibling with its currently stored order.
type Item[ID comparable] struct {
	ID    ID
	Order int
}

// Compact renumbers items (already sorted by their stored order) to 0..n-1 and
// returns only the ids whose order changed.
func Compact[ID comparable](items []Item[ID]) map[ID]int {
	changed := make(map[ID]int)
	for i, it := range items {
		if it.Order != i {
			changed[it.ID] = i
		}
	}
	return changed
}

// Contiguous reports whether the given order values are exactly 0..n-1.
func Contiguous(orders []int) bool {
	seen := make([]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}

// Changed drops the entries of positions whose order already matches the
// stored one, leaving the minimal set of writes.
func Changed[ID comparable](items []Item[ID], positions map[ID]int) map[ID]int {
	out := make(map[ID]int, len(positions))
	for _, it := range items {
		if p, ok := positions[it.ID]; ok && p != it.Order {
			out[it.ID] = p
		}
	}
	return out
}
