// Package apperrors defines the domain error taxonomy shared by all services.
// Services return these values (possibly wrapped); controllers translate them
// into HTTP status codes through HTTPStatus.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrEntityNotFound        = errors.New("entity not found")
	ErrRelatedEntityNotFound = errors.New("related entity not found")
	ErrQueryEmptyResult      = errors.New("query returned no results")
	ErrSameFavouriteStatus   = errors.New("favourite status is already set")
	ErrUserEmailNotUnique    = errors.New("email is already registered")
	ErrUserPhoneNotUnique    = errors.New("phone is already registered")
	ErrUserSubjectNotUnique  = errors.New("subject is already registered")
	ErrTicketTypeMapping     = errors.New("ticket type mapping does not match hall")
	ErrCantDeleteTask        = errors.New("background task could not be deleted")
	ErrRequiredDataNotFound  = errors.New("required data not found")

	ErrSeatAlreadyHeld     = errors.New("seat is already held")
	ErrHoldTokenMismatch   = errors.New("hold token does not match")
	ErrTicketNotAvailable  = errors.New("ticket is not available")
	ErrTicketsAlreadyExist = errors.New("tickets already generated for event")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorizedAction  = errors.New("action not allowed for this client")
	ErrHoldStoreFull       = errors.New("hold store is full")
)

// HTTPStatus maps a domain error to the HTTP status code a controller should
// answer with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEntityNotFound),
		errors.Is(err, ErrQueryEmptyResult):
		return http.StatusNotFound
	case errors.Is(err, ErrRelatedEntityNotFound),
		errors.Is(err, ErrTicketTypeMapping),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrSameFavouriteStatus),
		errors.Is(err, ErrUserEmailNotUnique),
		errors.Is(err, ErrUserPhoneNotUnique),
		errors.Is(err, ErrUserSubjectNotUnique),
		errors.Is(err, ErrSeatAlreadyHeld),
		errors.Is(err, ErrTicketNotAvailable),
		errors.Is(err, ErrTicketsAlreadyExist),
		errors.Is(err, ErrCantDeleteTask):
		return http.StatusConflict
	case errors.Is(err, ErrHoldTokenMismatch),
		errors.Is(err, ErrUnauthorizedAction):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrHoldStoreFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain reports whether err belongs to the taxonomy, i.e. whether its
// message is safe to show to a caller.
func IsDomain(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
