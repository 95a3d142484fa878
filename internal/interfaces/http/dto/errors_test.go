package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeAccountDeactivated, http.StatusForbidden},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeInvalidToken, http.StatusUnauthorized},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInvalidOperation, http.StatusUnprocessableEntity},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Lease not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Lease not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Nil(t, resp.Data)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)
}
