package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

type StatsGettingService interface {
	Stats() session.Stats
}

type StatsGettingHandler struct {
	service StatsGettingService
	logger  *logging.ZapLogger
}

func NewStatsGettingHandler(service StatsGettingService, logger *logging.ZapLogger) *StatsGettingHandler {
	return &StatsGettingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *StatsGettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Stats()
	response := handoverprotocol.Stats{
		TotalOrders:     stats.TotalOrders,
		BySource:        fromSourceCounts(stats.BySource),
		ScannedCount:    stats.ScannedCount,
		Remaining:       stats.Remaining,
		ScannedBySource: fromSourceCounts(stats.ScannedBySource),
	}
	if err := tryWriteResponseJSON(w, http.StatusOK, response); err != nil {
		h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
	}
}
