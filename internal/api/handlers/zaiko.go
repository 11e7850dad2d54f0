// Package handlers implements the API endpoints over the data
// pipeline.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// InventorySource supplies the latest monthly snapshot.
// *pipeline.Pipeline satisfies it.
type InventorySource interface {
	Snapshot(month int) (*inventory.Snapshot, error)
}

// ZaikoHandler serves broker inventory data
// ⭐ SSOT: 在庫APIハンドラーはこの構造体でのみ
type ZaikoHandler struct {
	source InventorySource
	logger *logger.Logger
	now    func() time.Time
}

// NewZaikoHandler creates a new inventory handler.
func NewZaikoHandler(source InventorySource, log *logger.Logger) *ZaikoHandler {
	return &ZaikoHandler{
		source: source,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the current-month default, for tests.
func (h *ZaikoHandler) WithClock(now func() time.Time) *ZaikoHandler {
	h.now = now
	return h
}

// Get returns the latest inventory snapshot.
// GET /api/zaiko?month=2&code=3048
// month defaults to the current month; code filters to one stock.
func (h *ZaikoHandler) Get(w http.ResponseWriter, r *http.Request) {
	month := int(h.now().Month())
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil || m < 1 || m > 12 {
			respondError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		month = m
	}

	snap, err := h.source.Snapshot(month)
	if err != nil {
		h.logger.WithError(err).WithField("month", month).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load inventory snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no inventory snapshot for month %d", month))
		return
	}

	if code := r.URL.Query().Get("code"); code != "" {
		stock, ok := snap.Get(code)
		if !ok {
			respondError(w, http.StatusNotFound, fmt.Sprintf("銘柄コード %s が見つかりません", code))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"month": snap.Month,
			"stamp": snap.Stamp,
			"data":  stock,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month": snap.Month,
		"stamp": snap.Stamp,
		"data":  snap.Stocks,
		"count": snap.Len(),
	})
}
