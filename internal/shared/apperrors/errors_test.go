package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"entity not found", ErrEntityNotFound, http.StatusNotFound},
		{"empty query", ErrQueryEmptyResult, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get event: %w", ErrEntityNotFound), http.StatusNotFound},
		{"related entity", ErrRelatedEntityNotFound, http.StatusBadRequest},
		{"mapping mismatch", ErrTicketTypeMapping, http.StatusBadRequest},
		{"same favourite", ErrSameFavouriteStatus, http.StatusConflict},
		{"email taken", ErrUserEmailNotUnique, http.StatusConflict},
		{"already held", ErrSeatAlreadyHeld, http.StatusConflict},
		{"background task", ErrCantDeleteTask, http.StatusConflict},
		{"token mismatch", ErrHoldTokenMismatch, http.StatusForbidden},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"hold capacity", fmt.Errorf("failed to hold seat: %w", ErrHoldStoreFull), http.StatusServiceUnavailable},
		{"missing catalog data", ErrRequiredDataNotFound, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(ErrSeatAlreadyHeld))
	assert.False(t, IsDomain(errors.New("connection reset")))
	assert.False(t, IsDomain(ErrRequiredDataNotFound))
}
