package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorInfoFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "not found",
			err:        shared.NewNotFoundError("part", uuid.Nil),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCodeNotFound,
			wantReason: "NOT_FOUND",
		},
		{
			name:       "validation keeps domain code as reason",
			err:        shared.NewValidationError("INSUFFICIENT_STOCK", "only 2 left"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
			wantReason: "INSUFFICIENT_STOCK",
		},
		{
			name:       "invalid state",
			err:        shared.NewInvalidStateError("RETURN_NOT_PENDING", "return is approved"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrCodeInvalidState,
			wantReason: "RETURN_NOT_PENDING",
		},
		{
			name:       "conflict",
			err:        shared.NewConflictError("SKU_EXISTS", "taken"),
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeConflict,
			wantReason: "SKU_EXISTS",
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("apply credit: %w", shared.ErrNonPositiveAmount),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
			wantReason: "NON_POSITIVE_AMOUNT",
		},
		{
			name:       "infrastructure error is opaque",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := ErrorInfoFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantReason, info.Reason)
			assert.NotContains(t, info.Message, "connection refused")
		})
	}
}

func TestErrorCodeFormat(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		t.Run(code, func(t *testing.T) {
			assert.Contains(t, code, "ERR_", "Error code should start with ERR_")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrorInfo{Code: ErrCodeNotFound, Message: "Part not found"}, "req-123-456")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Part not found", resp.Error.Message)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"reason"`)
}

func TestNewPageResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a", "b"}, 5, 1, 2)
	resp := NewPageResponse(page)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewPageResponse(shared.NewPaginated[string](nil, 0, 1, 20))
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":[]`)
}
