package common

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrMessageNotFound, http.StatusNotFound},
		{ErrMemberNotFound, http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{ErrNotSender, http.StatusForbidden},
		{ErrNotParticipant, http.StatusForbidden},
		{ErrForbidden, http.StatusForbidden},
		{ErrEmptyMessage, http.StatusBadRequest},
		{ErrEmptyCorrection, http.StatusBadRequest},
		{ErrSelfMessage, http.StatusBadRequest},
		{ErrTooManyMedia, http.StatusBadRequest},
		{ErrUnsupportedMedia, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrExpiredToken, http.StatusUnauthorized},
		{fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFromError(tt.err), "error %q", tt.err)
	}
}

func TestStatusFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("unsend: %w", ErrNotSender)

	assert.Equal(t, http.StatusForbidden, StatusFromError(wrapped))
}
