package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

type ScanService interface {
	Scan(ctx context.Context, raw string) (session.Result, error)
}

type ScanHandler struct {
	service ScanService
	logger  *logging.ZapLogger
}

func NewScanHandler(service ScanService, logger *logging.ZapLogger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[handoverprotocol.ScanRequest](r.Body)
	if err != nil {
		h.logger.DebugCtx(r.Context(), "error decoding scan", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := h.service.Scan(r.Context(), input.Code)
	if err != nil {
		h.logger.ErrorCtx(r.Context(), "scan handler error", zap.Error(err), zap.String("code", input.Code))
		response := handoverprotocol.ScanResponse{
			Kind:    handoverprotocol.Failure,
			Message: "scan could not be recorded, try again",
			Code:    input.Code,
		}
		if err := tryWriteResponseJSON(w, http.StatusInternalServerError, response); err != nil {
			h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
		}
		return
	}

	response := handoverprotocol.ScanResponse{
		Kind:    handoverprotocol.ScanKind(result.Kind),
		Message: result.Message(),
		Code:    result.Code,
	}
	if result.Order != nil {
		response.Order = fromSessionOrder(*result.Order)
	}

	status := http.StatusOK
	err = result.Err()
	switch {
	case err == nil && result.Kind == session.KindSuccess:
		event := fromSessionEvent(result.Event)
		response.Event = &event
	case err == nil:
	case errors.Is(err, session.ErrDuplicate):
		status = http.StatusConflict
		previous := result.PreviouslyScannedAt
		response.PreviouslyScannedAt = &previous
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUninitialized):
		status = http.StatusPreconditionFailed
	}

	if err := tryWriteResponseJSON(w, status, response); err != nil {
		h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
	}
}
