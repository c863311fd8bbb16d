package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"go-handover/pkg/logging"
)

func TestLoggerContextAddsRequestFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "log.json")
	logger, err := logging.NewZapLogger(zapcore.DebugLevel, logging.WithOutputPaths(logPath), logging.WithoutSampling())
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(NewLoggerContext().CreateHandler)
	router.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		logger.InfoCtx(r.Context(), "handled")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))
	assert.Equal(t, "/api/stats", entry["path"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Equal(t, "req-42", entry["request-id"])
}

func TestPanicRecoverAnswers500(t *testing.T) {
	handler := NewPanicRecover(logging.NewNop()).CreateHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scan", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
