package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueledger/internal/core/apperror"
	"venueledger/internal/infrastructure/storage/postgres"
)

type countingStore struct {
	acquired int
}

func (s *countingStore) AcquireKey(context.Context, string, string, string, string) (*postgres.IdempotencyReplay, error) {
	s.acquired++
	return nil, nil
}

func (s *countingStore) CompleteKey(context.Context, string, int, string, []byte) error { return nil }

func (s *countingStore) FailKey(context.Context, string, int, string, []byte) error { return nil }

func (s *countingStore) ReleaseKey(context.Context, string) error { return nil }

// brokenBody returns some bytes, then fails.
type brokenBody struct {
	data *strings.Reader
}

func (b *brokenBody) Read(p []byte) (int, error) {
	if b.data.Len() > 0 {
		return b.data.Read(p)
	}
	return 0, errors.New("connection reset")
}

func (b *brokenBody) Close() error { return nil }

func TestIdempotency_UnreadableBodyRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &countingStore{}
	handled := false

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/reports/generate", Idempotency(store), func(c *gin.Context) {
		handled = true
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/reports/generate", nil)
	req.Body = &brokenBody{data: strings.NewReader(`{"companyId":"`)}
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body.Code)
	assert.False(t, handled)
	assert.Zero(t, store.acquired)
}

func TestIdempotency_BodyPassedThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &countingStore{}
	var seen string

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/reports/generate", Idempotency(store), func(c *gin.Context) {
		raw, _ := c.GetRawData()
		seen = string(raw)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/reports/generate", strings.NewReader(`{"date":"2024-05-01"}`))
	req.Header.Set(HeaderIdempotencyKey, "k-2")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"date":"2024-05-01"}`, seen)
	assert.Equal(t, 1, store.acquired)
}
