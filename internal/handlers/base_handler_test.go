package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/returnpoint/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBaseHandler_RespondServiceError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		development     bool
		expectedStatus  int
		expectedMessage string
		expectDetails   bool
	}{
		{name: "validation", err: models.Errorf(models.ErrValidation, "title is required"), expectedStatus: http.StatusBadRequest, expectedMessage: "title is required"},
		{name: "conflict", err: models.Errorf(models.ErrConflict, "email already exists"), expectedStatus: http.StatusBadRequest, expectedMessage: "email already exists"},
		{name: "unauthorized", err: models.Errorf(models.ErrUnauthorized, "invalid credentials"), expectedStatus: http.StatusUnauthorized, expectedMessage: "invalid credentials"},
		{name: "forbidden", err: models.Errorf(models.ErrForbidden, "not authorized to modify this item"), expectedStatus: http.StatusForbidden, expectedMessage: "not authorized to modify this item"},
		{name: "not found", err: models.Errorf(models.ErrNotFound, "item not found"), expectedStatus: http.StatusNotFound, expectedMessage: "item not found"},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", models.Errorf(models.ErrNotFound, "item not found")), expectedStatus: http.StatusNotFound, expectedMessage: "item not found"},
		{name: "storage hidden", err: models.Wrap(models.ErrStorage, errors.New("disk full"), "error uploading file"), expectedStatus: http.StatusInternalServerError, expectedMessage: "internal server error"},
		{name: "unknown hidden", err: errors.New("connection refused"), expectedStatus: http.StatusInternalServerError, expectedMessage: "internal server error"},
		{name: "storage in development", err: models.Wrap(models.ErrStorage, errors.New("disk full"), "error uploading file"), development: true, expectedStatus: http.StatusInternalServerError, expectedMessage: "error uploading file", expectDetails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{Logger: zap.NewNop(), Development: tt.development}
			w := httptest.NewRecorder()

			h.RespondServiceError(w, httptest.NewRequest(http.MethodGet, "/api/items", nil), tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMessage, body.Error)
			if tt.expectDetails {
				assert.Equal(t, tt.err.Error(), body.Details)
			} else {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(zap.NewNop())

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Timestamp.IsZero())

	w = httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
