package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

type HistoryGettingService interface {
	Recent(limit int) []session.ScanEvent
}

type HistoryGettingHandler struct {
	service HistoryGettingService
	logger  *logging.ZapLogger
}

func NewHistoryGettingHandler(service HistoryGettingService, logger *logging.ZapLogger) *HistoryGettingHandler {
	return &HistoryGettingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *HistoryGettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.logger.DebugCtx(r.Context(), "invalid history limit", zap.String("limit", raw))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events := h.service.Recent(limit)
	response := make([]handoverprotocol.ScanEvent, 0, len(events))
	for _, event := range events {
		response = append(response, fromSessionEvent(event))
	}
	if err := tryWriteResponseJSON(w, http.StatusOK, response); err != nil {
		h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
	}
}
