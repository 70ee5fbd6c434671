package events

import (
	"fmt"
	"strings"

	"festivaltickets/internal/shared/apperrors"
)

type Status string

const (
	StatusPlanned Status = "PLANNED"
	StatusEnded   Status = "ENDED"
)

func (s Status) IsValid() bool {
	return s == StatusPlanned || s == StatusEnded
}

// ParseStatus looks up an event status by name, ignoring case
func ParseStatus(name string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(name)))
	if !status.IsValid() {
		return "", fmt.Errorf("event status %q: %w", name, apperrors.ErrRequiredDataNotFound)
	}
	return status, nil
}
