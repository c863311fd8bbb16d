package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/pkg/logging"
)

type HealthService interface {
	Health() error
}

type HealthHandler struct {
	service HealthService
	logger  *logging.ZapLogger
}

func NewHealthHandler(service HealthService, logger *logging.ZapLogger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	response := handoverprotocol.Health{Status: "ok"}
	if err := h.service.Health(); err != nil {
		h.logger.ErrorCtx(r.Context(), "session health check failed", zap.Error(err))
		status = http.StatusInternalServerError
		response = handoverprotocol.Health{Status: "corrupted", Error: err.Error()}
	}
	if err := tryWriteResponseJSON(w, status, response); err != nil {
		h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
	}
}
