package service

import (
	"github.com/google/uuid"

	"go-handover/internal/common/notifyprotocol"
	"go-handover/internal/handover/data"
	"go-handover/internal/handover/session"
)

func toDataOrder(datasetID uuid.UUID, order session.Order) data.Order {
	items := make([]data.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, data.LineItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return data.Order{
		DatasetID:        datasetID,
		TrackingNumber:   order.TrackingNumber,
		OrderNumber:      order.OrderNumber,
		Source:           string(order.Source),
		OriginFile:       order.OriginFile,
		Items:            items,
		ShippingProvider: order.ShippingProvider,
		TotalAmount:      order.TotalAmount,
	}
}

func fromDataOrder(order data.Order) session.Order {
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
	return session.Order{
		OrderNumber:      order.OrderNumber,
		TrackingNumber:   order.TrackingNumber,
		Source:           session.Source(order.Source),
		OriginFile:       order.OriginFile,
		Items:            items,
		ShippingProvider: order.ShippingProvider,
		TotalAmount:      order.TotalAmount,
	}
}

func toDataScanEvent(datasetID uuid.UUID, event session.ScanEvent) data.ScanEvent {
	return data.ScanEvent{
		DatasetID:      datasetID,
		TrackingNumber: event.TrackingNumber,
		OrderNumber:    event.OrderNumber,
		Source:         string(event.Source),
		OriginFile:     event.OriginFile,
		ScannedAt:      event.ScannedAt,
	}
}

func fromDataScanEvent(event data.ScanEvent) session.ScanEvent {
	return session.ScanEvent{
		TrackingNumber: event.TrackingNumber,
		OrderNumber:    event.OrderNumber,
		Source:         session.Source(event.Source),
		OriginFile:     event.OriginFile,
		ScannedAt:      event.ScannedAt,
	}
}

func toNotification(datasetID uuid.UUID, event session.ScanEvent) notifyprotocol.Message {
	return notifyprotocol.Message{
		DatasetID:      datasetID.String(),
		Source:         string(event.Source),
		OrderNumber:    event.OrderNumber,
		TrackingNumber: event.TrackingNumber,
		OriginFile:     event.OriginFile,
		ScannedAt:      event.ScannedAt,
	}
}
