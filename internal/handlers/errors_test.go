package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripslot/attractions-backend/internal/services"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"account locked", services.ErrAccountLocked, http.StatusTooManyRequests},
		{"guest limit", services.ErrGuestLimit, http.StatusBadRequest},
		{"guest count invalid", services.ErrGuestCountInvalid, http.StatusBadRequest},
		{"invalid date format", services.ErrInvalidDateFormat, http.StatusBadRequest},
		{"insufficient slots on update", services.ErrInsufficientSlotsForUpdate, http.StatusBadRequest},
		{"cost ceiling", services.ErrCostCeiling, http.StatusForbidden},
		{"invalid status", services.ErrInvalidStatus, http.StatusUnprocessableEntity},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, statusForError(tc.err))
		})
	}
}
