package catalog

import (
	"fmt"

	"github.com/mkowalik/libris/internal/entities"
)

// statusTransitions is the closed transition table for book statuses.
// Same-status transitions are deliberately absent and therefore rejected.
var statusTransitions = map[entities.BookStatus][]entities.BookStatus{
	entities.BookStatusAvailable:   {entities.BookStatusBorrowed, entities.BookStatusReserved, entities.BookStatusMaintenance},
	entities.BookStatusBorrowed:    {entities.BookStatusAvailable, entities.BookStatusMaintenance},
	entities.BookStatusReserved:    {entities.BookStatusAvailable, entities.BookStatusBorrowed, entities.BookStatusMaintenance},
	entities.BookStatusMaintenance: {entities.BookStatusAvailable},
}

// CanTransition reports whether a book may move from current to next.
func CanTransition(current, next entities.BookStatus) bool {
	for _, allowed := range statusTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current entities.BookStatus) []entities.BookStatus {
	allowed := statusTransitions[current]
	out := make([]entities.BookStatus, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateTransition returns a ConflictError naming both states when the
// transition is not in the table.
func ValidateTransition(current, next entities.BookStatus) error {
	if CanTransition(current, next) {
		return nil
	}
	return &ConflictError{
		Reason: fmt.Sprintf("invalid status transition from %s to %s", current, next),
	}
}
