package handlers

import (
	"net/http"
	"strconv"

	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// ResultSource computes performance tables. *pipeline.Pipeline
// satisfies it.
type ResultSource interface {
	Results(month int) ([]perform.Result, error)
}

// PerformanceHandler serves computed performance tables
// ⭐ SSOT: パフォーマンスAPIハンドラーはこの構造体でのみ
type PerformanceHandler struct {
	source ResultSource
	logger *logger.Logger
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(source ResultSource, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{source: source, logger: log}
}

// Get returns the performance table, descending.
// GET /api/performance?month=2&limit=50
// month 0 or absent means every settlement month.
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	month := 0
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil || m < 0 || m > 12 {
			respondError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		month = m
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := h.source.Results(month)
	if err != nil {
		h.logger.WithError(err).WithField("month", month).Error("Failed to compute performance")
		respondError(w, http.StatusInternalServerError, "Failed to compute performance")
		return
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	displays := make([]perform.Display, len(results))
	for i := range results {
		displays[i] = results[i].Display()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":   month,
		"count":   len(displays),
		"results": displays,
	})
}
