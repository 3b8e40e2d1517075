package core

import (
	"fmt"
	"strings"
)

// MalformedError reports a record that violates the domain invariants.
type MalformedError struct {
	ID     int64
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed transaction %d: %s", e.ID, e.Reason)
}

// CheckTransaction verifies a transaction received from a store against the
// authoritative category set. The embedded Category join is not consulted.
func CheckTransaction(tx Transaction, known []Category) error {
	switch {
	case tx.ID < 1:
		return &MalformedError{ID: tx.ID, Reason: "missing id"}
	case tx.Amount.Validate() != nil:
		return &MalformedError{ID: tx.ID, Reason: "amount must be positive"}
	case strings.TrimSpace(tx.Description) == "":
		return &MalformedError{ID: tx.ID, Reason: "empty description"}
	case tx.Date.IsZero():
		return &MalformedError{ID: tx.ID, Reason: "missing date"}
	}
	if _, ok := FindCategory(known, tx.CategoryID); !ok {
		return &MalformedError{ID: tx.ID, Reason: fmt.Sprintf("unknown category %d", tx.CategoryID)}
	}
	return nil
}
