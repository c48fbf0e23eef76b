package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError_WrappedChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("generate report: %w", NewPersistenceFailure(cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodePersistenceFailure, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
	assert.ErrorIs(t, err, cause)
}

func TestNewInvalidTimeRange_Details(t *testing.T) {
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	err := NewInvalidTimeRange(start, end)

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "2024-05-02T00:00:00Z", err.Details["periodStart"])
	assert.True(t, HasCode(err, CodeInvalidTimeRange))
	assert.False(t, IsNotFound(err))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}
