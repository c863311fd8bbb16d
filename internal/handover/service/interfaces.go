package service

import (
	"context"

	"github.com/google/uuid"

	"go-handover/internal/common/notifyprotocol"
	"go-handover/internal/handover/data"
)

type Repository interface {
	InsertDataset(ctx context.Context, dataset data.Dataset) error
	InsertOrders(ctx context.Context, datasetID uuid.UUID, orders []data.Order) error
	InsertScanEvent(ctx context.Context, event data.ScanEvent) error
	GetLatestDataset(ctx context.Context) (data.Dataset, error)
	GetDatasetOrders(ctx context.Context, datasetID uuid.UUID) ([]data.Order, error)
	GetScanEvents(ctx context.Context, datasetID uuid.UUID) ([]data.ScanEvent, error)
}

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(msg notifyprotocol.Message) bool
}
