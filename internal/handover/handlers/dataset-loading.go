package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

type DatasetLoadingService interface {
	LoadDataset(ctx context.Context, orders []session.Order) (session.LoadSummary, error)
}

type DatasetLoadingHandler struct {
	service DatasetLoadingService
	logger  *logging.ZapLogger
}

func NewDatasetLoadingHandler(service DatasetLoadingService, logger *logging.ZapLogger) *DatasetLoadingHandler {
	return &DatasetLoadingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *DatasetLoadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[handoverprotocol.LoadRequest](r.Body)
	if err != nil {
		h.logger.DebugCtx(r.Context(), "error decoding dataset", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	summary, err := h.service.LoadDataset(r.Context(), toSessionOrders(input.Orders))
	if err != nil {
		h.logger.ErrorCtx(r.Context(), "dataset loading error", zap.Error(err), zap.Int("rows", len(input.Orders)))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := handoverprotocol.LoadSummary{
		DatasetID:   summary.DatasetID.String(),
		TotalOrders: summary.TotalOrders,
		BySource:    fromSourceCounts(summary.BySource),
		FileCount:   summary.FileCount,
		Skipped:     summary.Skipped,
	}
	if err := tryWriteResponseJSON(w, http.StatusOK, response); err != nil {
		h.logger.ErrorCtx(r.Context(), "error writing response", zap.Error(err))
	}
}
