package dbrepository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"go-handover/internal/handover/data"
	"go-handover/pkg/logging"
)

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) (pgx.Row, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, batch *pgx.Batch) (pgx.BatchResults, error)
}

// DBRepository is the Postgres journal of datasets and scan events.
type DBRepository struct {
	storage DBStorage
	logger  *logging.ZapLogger
}

func New(storage DBStorage, logger *logging.ZapLogger) *DBRepository {
	return &DBRepository{
		storage: storage,
		logger:  logger,
	}
}

//go:embed sql/insert_dataset.sql
var insertDatasetQuery string

func (db *DBRepository) InsertDataset(ctx context.Context, dataset data.Dataset) error {
	_, err := db.storage.Exec(
		ctx,
		insertDatasetQuery,
		dataset.ID,
		dataset.LoadedAt,
		dataset.TotalOrders,
		dataset.FileCount,
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/insert_order.sql
var insertOrderQuery string

func (db *DBRepository) InsertOrders(ctx context.Context, datasetID uuid.UUID, orders []data.Order) error {
	if len(orders) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, order := range orders {
		items, err := json.Marshal(order.Items)
		if err != nil {
			return fmt.Errorf("failed to marshal items of %s: %w", order.TrackingNumber, err)
		}
		batch.Queue(
			insertOrderQuery,
			datasetID,
			order.TrackingNumber,
			order.OrderNumber,
			order.Source,
			order.OriginFile,
			items,
			order.ShippingProvider,
			order.TotalAmount,
		)
	}
	results, err := db.storage.SendBatch(ctx, batch)
	if err != nil {
		return handleSQLError(err)
	}
	defer results.Close()
	for range orders {
		if _, err := results.Exec(); err != nil {
			return handleSQLError(err)
		}
	}
	db.logger.DebugCtx(ctx, "dataset orders journaled", zap.Stringer("datasetID", datasetID), zap.Int("count", len(orders)))
	return nil
}

//go:embed sql/insert_scan_event.sql
var insertScanEventQuery string

func (db *DBRepository) InsertScanEvent(ctx context.Context, event data.ScanEvent) error {
	_, err := db.storage.Exec(
		ctx,
		insertScanEventQuery,
		event.DatasetID,
		event.TrackingNumber,
		event.OrderNumber,
		event.Source,
		event.OriginFile,
		event.ScannedAt,
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_latest_dataset.sql
var selectLatestDatasetQuery string

func (db *DBRepository) GetLatestDataset(ctx context.Context) (data.Dataset, error) {
	row, err := db.storage.QueryRow(ctx, selectLatestDatasetQuery)
	if err != nil {
		return data.Dataset{}, handleSQLError(err)
	}
	var dataset data.Dataset
	err = row.Scan(&dataset.ID, &dataset.LoadedAt, &dataset.TotalOrders, &dataset.FileCount)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return data.Dataset{}, data.ErrNoDataset
		default:
			return data.Dataset{}, handleSQLError(err)
		}
	}
	return dataset, nil
}

//go:embed sql/select_dataset_orders.sql
var selectDatasetOrdersQuery string

func (db *DBRepository) GetDatasetOrders(ctx context.Context, datasetID uuid.UUID) ([]data.Order, error) {
	rows, err := db.storage.Query(ctx, selectDatasetOrdersQuery, datasetID)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.Order, 0)
	for rows.Next() {
		order := data.Order{
			DatasetID: datasetID,
		}
		var items []byte
		err := rows.Scan(
			&order.TrackingNumber,
			&order.OrderNumber,
			&order.Source,
			&order.OriginFile,
			&items,
			&order.ShippingProvider,
			&order.TotalAmount,
		)
		if err != nil {
			return nil, handleSQLError(err)
		}
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items of %s: %w", order.TrackingNumber, err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

//go:embed sql/select_scan_events.sql
var selectScanEventsQuery string

func (db *DBRepository) GetScanEvents(ctx context.Context, datasetID uuid.UUID) ([]data.ScanEvent, error) {
	rows, err := db.storage.Query(ctx, selectScanEventsQuery, datasetID)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.ScanEvent, 0)
	for rows.Next() {
		event := data.ScanEvent{
			DatasetID: datasetID,
		}
		err := rows.Scan(
			&event.TrackingNumber,
			&event.OrderNumber,
			&event.Source,
			&event.OriginFile,
			&event.ScannedAt,
		)
		if err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

func handleSQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", data.ErrUniqueConstraintViolation, pgErr.ConstraintName)
		}
	}
	return err
}
