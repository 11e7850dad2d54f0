package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

type memInventory map[int]*inventory.Snapshot

func (m memInventory) Snapshot(month int) (*inventory.Snapshot, error) {
	return m[month], nil
}

type memResults map[int][]perform.Result

func (m memResults) Results(month int) ([]perform.Result, error) {
	return m[month], nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func intPtr(v int) *int { return &v }

func testSnapshots() memInventory {
	return memInventory{
		2: {
			Month: 2,
			Stamp: "20260210",
			Stocks: map[string]*inventory.Stock{
				"3048": {Name: "ビックカメラ", Zaiko: map[inventory.Broker]*int{inventory.Nikko: intPtr(300)}},
			},
		},
	}
}

func TestZaikoHandlerByMonth(t *testing.T) {
	h := NewZaikoHandler(testSnapshots(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/zaiko?month=2", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Month int                         `json:"month"`
		Stamp string                      `json:"stamp"`
		Data  map[string]*inventory.Stock `json:"data"`
		Count int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Month)
	assert.Equal(t, "20260210", body.Stamp)
	assert.Equal(t, 1, body.Count)
	require.Contains(t, body.Data, "3048")
	assert.Equal(t, "ビックカメラ", body.Data["3048"].Name)
}

func TestZaikoHandlerDefaultsToCurrentMonth(t *testing.T) {
	h := NewZaikoHandler(testSnapshots(), testLogger()).
		WithClock(func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) })

	req := httptest.NewRequest(http.MethodGet, "/api/zaiko", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestZaikoHandlerCodeFilter(t *testing.T) {
	h := NewZaikoHandler(testSnapshots(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/zaiko?month=2&code=3048", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/zaiko?month=2&code=9999", nil)
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestZaikoHandlerMissingSnapshot(t *testing.T) {
	h := NewZaikoHandler(testSnapshots(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/zaiko?month=7", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestZaikoHandlerInvalidMonth(t *testing.T) {
	h := NewZaikoHandler(testSnapshots(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/zaiko?month=13", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerformanceHandler(t *testing.T) {
	results := memResults{
		2: {
			{Code: "9861", Name: "吉野家HD", SettlementMonth: 2, Price: 3000, Shares: registry.ShareCount{Count: 100}, Value: 5000, Performance: 1.9},
			{Code: "3048", Name: "ビックカメラ", SettlementMonth: 2, Price: 2000, Shares: registry.ShareCount{Count: 100}, Value: 3000, Performance: 1.5},
		},
	}
	h := NewPerformanceHandler(results, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performance?month=2", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Month   int               `json:"month"`
		Count   int               `json:"count"`
		Results []perform.Display `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Month)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "9861", body.Results[0].Code)
	assert.Equal(t, 1.9, body.Results[0].Performance)
}

func TestPerformanceHandlerLimit(t *testing.T) {
	results := memResults{
		0: {
			{Code: "9861", Performance: 1.9},
			{Code: "3048", Performance: 1.5},
		},
	}
	h := NewPerformanceHandler(results, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performance?limit=1", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int               `json:"count"`
		Results []perform.Display `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "9861", body.Results[0].Code)
}
