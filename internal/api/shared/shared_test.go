package shared_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/certs-api/internal/api/shared"
	"github.com/phrazzld/certs-api/internal/platform/logger"
)

func TestTraceID(t *testing.T) {
	ctx := shared.SetTraceID(context.Background())
	traceID := shared.GetTraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.NotContains(t, traceID, "-")

	other := shared.GetTraceID(shared.SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	assert.Empty(t, shared.GetTraceID(context.Background()))
}

func TestUserIDFromContext(t *testing.T) {
	id := uuid.New()

	got, ok := shared.UserIDFromContext(shared.WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = shared.UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = shared.UserIDFromContext(shared.WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)
}

type percentRequest struct {
	Percent *float64 `json:"percent" validate:"required,gte=0,lte=1"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"percent": 0.5}`))
		var req percentRequest
		require.NoError(t, shared.DecodeJSON(r, &req))
		require.NotNil(t, req.Percent)
		assert.InDelta(t, 0.5, *req.Percent, 1e-9)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var req percentRequest
		assert.ErrorIs(t, shared.DecodeJSON(r, &req), shared.ErrEmptyBody)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"percent":`))
		var req percentRequest
		err := shared.DecodeJSON(r, &req)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrEmptyBody)
	})
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	half, tooMuch := 0.5, 1.5

	assert.NoError(t, shared.ValidateRequest(&percentRequest{Percent: &half}))
	assert.Error(t, shared.ValidateRequest(&percentRequest{Percent: &tooMuch}))
	assert.Error(t, shared.ValidateRequest(&percentRequest{}))

	custom := errors.New("custom")
	assert.Equal(t, custom, shared.ValidateRequest(selfValidating{err: custom}))
}

func TestRespondWithErrorAndLog(t *testing.T) {
	logBuf, log := logger.NewBufferLogger()
	ctx := logger.WithLogger(shared.SetTraceID(context.Background()), log)
	r := httptest.NewRequest(http.MethodGet, "/api/flags", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Internal server error",
		errors.New("dial postgres://certs:hunter2@db:5432/certs failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, shared.GetTraceID(ctx), body.TraceID)
	assert.NotContains(t, w.Body.String(), "hunter2")

	logs := logBuf.String()
	assert.Contains(t, logs, "API error response")
	assert.Contains(t, logs, body.TraceID)
	assert.NotContains(t, logs, "hunter2")
}

func TestRespondWithJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"task_id": "abc"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"task_id":"abc"}`, w.Body.String())
}
