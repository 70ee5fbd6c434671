package tickets

import (
	"fmt"

	"festivaltickets/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketTypeSpec is the caller's description of a ticket type to create
type TicketTypeSpec struct {
	Name  string
	Price decimal.Decimal
}

// NewTicketTypes assigns ids to the requested types of an event
func NewTicketTypes(eventID uuid.UUID, specs []TicketTypeSpec) []TicketType {
	types := make([]TicketType, len(specs))
	for i, spec := range specs {
		types[i] = TicketType{
			ID:      uuid.New(),
			EventID: eventID,
			Name:    spec.Name,
			Price:   spec.Price,
		}
	}
	return types
}

// BuildTickets lays out the tickets of an event over the hall geometry.
//
// For a hall divided by seats rowMapping names the ticket type of every row
// and one ticket is produced per (row, seat); every ticket type must be
// mapped to at least one row. Otherwise the event has exactly one ticket type,
// SeatsInRow general admission tickets of it are produced and rowMapping, if
// given, may only name that type.
func BuildTickets(geometry HallGeometry, types []TicketType, rowMapping []string) ([]Ticket, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("no ticket types: %w", apperrors.ErrInvalidInput)
	}
	if geometry.SeatsInRow < 1 || (geometry.IsDividedBySeats && geometry.RowAmount < 1) {
		return nil, fmt.Errorf("hall geometry %dx%d: %w", geometry.RowAmount, geometry.SeatsInRow, apperrors.ErrInvalidInput)
	}

	byName := make(map[string]uuid.UUID, len(types))
	for _, tt := range types {
		if tt.ID == uuid.Nil {
			return nil, fmt.Errorf("ticket type %q has no id: %w", tt.Name, apperrors.ErrInvalidInput)
		}
		if _, dup := byName[tt.Name]; dup {
			return nil, fmt.Errorf("duplicate ticket type %q: %w", tt.Name, apperrors.ErrInvalidInput)
		}
		byName[tt.Name] = tt.ID
	}

	if !geometry.IsDividedBySeats {
		if len(types) != 1 {
			return nil, fmt.Errorf("general admission takes one ticket type, got %d: %w", len(types), apperrors.ErrTicketTypeMapping)
		}
		for _, name := range rowMapping {
			if name != types[0].Name {
				return nil, fmt.Errorf("mapped type %q is not %q: %w", name, types[0].Name, apperrors.ErrTicketTypeMapping)
			}
		}
		tickets := make([]Ticket, geometry.SeatsInRow)
		for i := range tickets {
			tickets[i] = Ticket{
				ID:           uuid.New(),
				TicketTypeID: types[0].ID,
				Status:       StatusAvailable,
			}
		}
		return tickets, nil
	}

	if len(rowMapping) != geometry.RowAmount {
		return nil, fmt.Errorf("%d rows mapped for %d rows: %w", len(rowMapping), geometry.RowAmount, apperrors.ErrTicketTypeMapping)
	}

	mapped := make(map[string]struct{}, len(types))
	for _, name := range rowMapping {
		mapped[name] = struct{}{}
	}
	for _, tt := range types {
		if _, ok := mapped[tt.Name]; !ok {
			return nil, fmt.Errorf("ticket type %q is not mapped to any row: %w", tt.Name, apperrors.ErrTicketTypeMapping)
		}
	}

	tickets := make([]Ticket, 0, geometry.RowAmount*geometry.SeatsInRow)
	for r := 1; r <= geometry.RowAmount; r++ {
		typeID, ok := byName[rowMapping[r-1]]
		if !ok {
			return nil, fmt.Errorf("row %d maps to unknown type %q: %w", r, rowMapping[r-1], apperrors.ErrTicketTypeMapping)
		}
		for s := 1; s <= geometry.SeatsInRow; s++ {
			row, seat := r, s
			tickets = append(tickets, Ticket{
				ID:           uuid.New(),
				RowNum:       &row,
				SeatNum:      &seat,
				TicketTypeID: typeID,
				Status:       StatusAvailable,
			})
		}
	}
	return tickets, nil
}
