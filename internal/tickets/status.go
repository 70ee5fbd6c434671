package tickets

import (
	"fmt"
	"strings"

	"festivaltickets/internal/shared/apperrors"
)

// Status is the lifecycle state of a ticket
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHold      Status = "HOLD"
	StatusSold      Status = "SOLD"
	StatusOutOfDate Status = "OUT_OF_DATE"
)

var statusAliases = map[string]Status{
	"PURCHASED": StatusSold,
}

// IsValid reports whether s is part of the catalog
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHold, StatusSold, StatusOutOfDate:
		return true
	default:
		return false
	}
}

// Persistable reports whether s may be written to the tickets table.
// HOLD only exists as an overlay from the hold store.
func (s Status) Persistable() bool {
	return s.IsValid() && s != StatusHold
}

// ParseStatus looks a status up by name, case-insensitively
func ParseStatus(name string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := statusAliases[normalized]; ok {
		return alias, nil
	}
	s := Status(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("ticket status %q: %w", name, apperrors.ErrRequiredDataNotFound)
	}
	return s, nil
}
