package handover

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/service"
	"go-handover/pkg/logging"
)

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandoverScenario(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	router := NewRouter(service.NewHandover(logging.NewNop(), service.WithClock(clock)), logging.NewNop())

	rec := doJSON(t, router, http.MethodPost, "/api/scan", handoverprotocol.ScanRequest{Code: "TT900"})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, handoverprotocol.Uninitialized, decode[handoverprotocol.ScanResponse](t, rec).Kind)

	rec = doJSON(t, router, http.MethodPost, "/api/dataset", handoverprotocol.LoadRequest{
		Orders: []handoverprotocol.Order{
			{OrderNumber: "SPX001", TrackingNumber: "TT900", Source: "Shopee", OriginFile: "shopee.xlsx"},
			{OrderNumber: "TK002", TrackingNumber: "TT901", Source: "TikTok Shop", OriginFile: "tiktok.csv"},
			{OrderNumber: "NO-TRACK", Source: "Shopee", OriginFile: "shopee.xlsx"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[handoverprotocol.LoadSummary](t, rec)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 2, summary.FileCount)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, map[string]int{"shopee": 1, "tiktok": 1, "unknown": 0}, summary.BySource)
	assert.NotEmpty(t, summary.DatasetID)

	rec = doJSON(t, router, http.MethodPost, "/api/scan", handoverprotocol.ScanRequest{Code: " TT900\n"})
	require.Equal(t, http.StatusOK, rec.Code)
	success := decode[handoverprotocol.ScanResponse](t, rec)
	assert.Equal(t, handoverprotocol.Success, success.Kind)
	require.NotNil(t, success.Event)
	assert.Equal(t, "SPX001", success.Event.OrderNumber)
	assert.Equal(t, "shopee", success.Event.Source)

	rec = doJSON(t, router, http.MethodPost, "/api/scan", handoverprotocol.ScanRequest{Code: "TT900"})
	require.Equal(t, http.StatusConflict, rec.Code)
	duplicate := decode[handoverprotocol.ScanResponse](t, rec)
	assert.Equal(t, handoverprotocol.Duplicate, duplicate.Kind)
	require.NotNil(t, duplicate.PreviouslyScannedAt)
	assert.True(t, success.Event.ScannedAt.Equal(*duplicate.PreviouslyScannedAt))
	require.NotNil(t, duplicate.Order)
	assert.Equal(t, "SPX001", duplicate.Order.OrderNumber)

	rec = doJSON(t, router, http.MethodPost, "/api/scan", handoverprotocol.ScanRequest{Code: "XX000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handoverprotocol.NotFound, decode[handoverprotocol.ScanResponse](t, rec).Kind)

	rec = doJSON(t, router, http.MethodPost, "/api/scan", handoverprotocol.ScanRequest{Code: "   "})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handoverprotocol.Ignored, decode[handoverprotocol.ScanResponse](t, rec).Kind)

	rec = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[handoverprotocol.Stats](t, rec)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.ScannedCount)
	assert.Equal(t, 1, stats.Remaining)
	assert.Equal(t, 1, stats.ScannedBySource["shopee"])

	rec = doJSON(t, router, http.MethodGet, "/api/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]handoverprotocol.ScanEvent](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "TT900", history[0].TrackingNumber)

	rec = doJSON(t, router, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[handoverprotocol.Health](t, rec).Status)
}

func TestRouterRejectsBadInput(t *testing.T) {
	router := NewRouter(service.NewHandover(logging.NewNop()), logging.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", bytes.NewBufferString(`{"rows":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(`not json`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[handoverprotocol.Stats](t, rec)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, 0, stats.Remaining)
}
