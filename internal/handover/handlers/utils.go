package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

func closeBody(ctx context.Context, body io.ReadCloser, logger *logging.ZapLogger) {
	err := body.Close()
	if err != nil {
		logger.ErrorCtx(ctx, "failed to close body", zap.Error(err))
	}
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&out)
	return out, err //nolint:wrapcheck // unnecessary
}

func tryWriteResponseJSON(w http.ResponseWriter, status int, responseItem any) error {
	res, err := json.Marshal(responseItem)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(res)
	if err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func toSessionOrders(orders []handoverprotocol.Order) []session.Order {
	res := make([]session.Order, 0, len(orders))
	for _, order := range orders {
		items := make([]session.LineItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, session.LineItem{
				SKU:       item.SKU,
				Name:      item.Name,
				Variant:   item.Variant,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		res = append(res, session.Order{
			OrderNumber:      order.OrderNumber,
			TrackingNumber:   order.TrackingNumber,
			Source:           session.ClassifySource(order.Source),
			OriginFile:       order.OriginFile,
			Items:            items,
			ShippingProvider: order.ShippingProvider,
			TotalAmount:      order.TotalAmount,
		})
	}
	return res
}

func fromSessionOrder(order session.Order) *handoverprotocol.Order {
	items := make([]handoverprotocol.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, handoverprotocol.LineItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &handoverprotocol.Order{
		OrderNumber:      order.OrderNumber,
		TrackingNumber:   order.TrackingNumber,
		Source:           string(order.Source),
		OriginFile:       order.OriginFile,
		Items:            items,
		ShippingProvider: order.ShippingProvider,
		TotalAmount:      order.TotalAmount,
	}
}

func fromSessionEvent(event session.ScanEvent) handoverprotocol.ScanEvent {
	return handoverprotocol.ScanEvent{
		TrackingNumber: event.TrackingNumber,
		OrderNumber:    event.OrderNumber,
		Source:         string(event.Source),
		OriginFile:     event.OriginFile,
		ScannedAt:      event.ScannedAt,
	}
}

func fromSourceCounts(counts map[session.Source]int) map[string]int {
	res := make(map[string]int, len(counts))
	for source, count := range counts {
		res[string(source)] = count
	}
	return res
}
