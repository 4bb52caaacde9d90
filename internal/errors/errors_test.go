package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	appErrors "Parking/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSentinelsSurviveClones(t *testing.T) {
	wrapped := fmt.Errorf("deduct: %w", appErrors.ErrInsufficientBalance.
		WithError(errors.New("balance 100")).
		WithDetails(map[string]interface{}{"required": 500}))

	assert.ErrorIs(t, wrapped, appErrors.ErrInsufficientBalance)
	assert.NotErrorIs(t, wrapped, appErrors.ErrInactiveAccount)
	assert.True(t, appErrors.HasCode(wrapped, "INSUFFICIENT_BALANCE"))

	appErr, ok := appErrors.AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Details["required"])
	assert.Empty(t, appErrors.ErrInsufficientBalance.Details, "sentinel must stay untouched")
}

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{appErrors.ErrNoApplicableTariff, "NO_APPLICABLE_TARIFF", http.StatusUnprocessableEntity},
		{gorm.ErrRecordNotFound, "NOT_FOUND", http.StatusNotFound},
		{context.Canceled, "REQUEST_CANCELED", http.StatusRequestTimeout},
		{context.DeadlineExceeded, "REQUEST_TIMEOUT", http.StatusGatewayTimeout},
		{errors.New("boom"), "UNKNOWN_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := appErrors.FromError(tc.err)
		assert.Equal(t, tc.code, got.Code)
		assert.Equal(t, tc.status, got.StatusCode)
	}
}

func TestNewValidationError(t *testing.T) {
	err := appErrors.NewValidationError("exit_time", "must not be before entry_time")
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "exit_time", err.Details["field"])
	assert.Contains(t, err.Error(), "exit_time must not be before entry_time")
}

func TestParseValidationErrors(t *testing.T) {
	type body struct {
		PlateNumber string `validate:"required"`
		Amount      int64  `validate:"gt=0"`
	}
	verr := validator.New().Struct(body{})
	require.Error(t, verr)

	got := appErrors.ParseValidationErrors(verr)
	assert.Equal(t, "VALIDATION_ERROR", got.Code)
	fields, ok := got.Details["fields"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "plate_number", fields[0]["field"])
	assert.Equal(t, "plate_number is required", fields[0]["message"])
	assert.Equal(t, "amount must be greater than 0", fields[1]["message"])

	other := appErrors.ParseValidationErrors(errors.New("unexpected EOF"))
	assert.Equal(t, "BAD_REQUEST", other.Code)
}
