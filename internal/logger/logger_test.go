package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, observed := observer.New(zapcore.InfoLevel)
	t.Cleanup(Set(zap.New(core)))
	return observed
}

func TestInit(t *testing.T) {
	t.Cleanup(Set(nil))

	Init("production")
	assert.NotNil(t, log)

	Init("development")
	assert.NotNil(t, log)
}

func TestL_LazyInit(t *testing.T) {
	t.Cleanup(Set(nil))
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
}

func TestRequestIDFrom(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}

func TestFromCtx(t *testing.T) {
	observed := observe(t)

	FromCtx(WithRequestID(context.Background(), "req-abc")).Info("with id")
	FromCtx(context.Background()).Info("without id")

	logs := observed.TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, "req-abc", logs[0].ContextMap()["request_id"])
	_, ok := logs[1].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("generates", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), seen)
	})

	t.Run("preserves", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "given")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "given", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "given", seen)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	observed := observe(t)

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	logs := observed.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "request", logs[0].Message)
	assert.Equal(t, "/orders", logs[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusTeapot, logs[0].ContextMap()["status"])
}
