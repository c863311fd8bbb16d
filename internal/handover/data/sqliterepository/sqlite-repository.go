package sqliterepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"go-handover/internal/handover/data"
	"go-handover/pkg/logging"
)

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

// SQLiteRepository journals datasets and scan events into a local file.
// Timestamps are stored in UTC so that text ordering matches time ordering.
type SQLiteRepository struct {
	storage DBStorage
	logger  *logging.ZapLogger
}

func New(storage DBStorage, logger *logging.ZapLogger) *SQLiteRepository {
	return &SQLiteRepository{
		storage: storage,
		logger:  logger,
	}
}

const insertDatasetQuery = `INSERT INTO datasets (id, loaded_at, total_orders, file_count) VALUES (?, ?, ?, ?)`

func (r *SQLiteRepository) InsertDataset(ctx context.Context, dataset data.Dataset) error {
	_, err := r.storage.Exec(
		ctx,
		insertDatasetQuery,
		dataset.ID.String(),
		dataset.LoadedAt.UTC(),
		dataset.TotalOrders,
		dataset.FileCount,
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

const insertOrderQuery = `INSERT INTO dataset_orders
    (dataset_id, tracking_number, order_number, source, origin_file, items, shipping_provider, total_amount)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (r *SQLiteRepository) InsertOrders(ctx context.Context, datasetID uuid.UUID, orders []data.Order) error {
	if len(orders) == 0 {
		return nil
	}
	err := r.storage.DoWithTransaction(ctx, func(ctx context.Context) error {
		for _, order := range orders {
			items, err := json.Marshal(order.Items)
			if err != nil {
				return fmt.Errorf("failed to marshal items of %s: %w", order.TrackingNumber, err)
			}
			_, err = r.storage.Exec(
				ctx,
				insertOrderQuery,
				datasetID.String(),
				order.TrackingNumber,
				order.OrderNumber,
				order.Source,
				order.OriginFile,
				string(items),
				order.ShippingProvider,
				order.TotalAmount.String(),
			)
			if err != nil {
				return handleSQLError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	r.logger.DebugCtx(ctx, "dataset orders journaled", zap.Stringer("datasetID", datasetID), zap.Int("count", len(orders)))
	return nil
}

const insertScanEventQuery = `INSERT INTO scan_events
    (dataset_id, tracking_number, order_number, source, origin_file, scanned_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (r *SQLiteRepository) InsertScanEvent(ctx context.Context, event data.ScanEvent) error {
	_, err := r.storage.Exec(
		ctx,
		insertScanEventQuery,
		event.DatasetID.String(),
		event.TrackingNumber,
		event.OrderNumber,
		event.Source,
		event.OriginFile,
		event.ScannedAt.UTC(),
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

const selectLatestDatasetQuery = `SELECT id, loaded_at, total_orders, file_count
FROM datasets
ORDER BY loaded_at DESC, rowid DESC
LIMIT 1`

func (r *SQLiteRepository) GetLatestDataset(ctx context.Context) (data.Dataset, error) {
	row, err := r.storage.QueryRow(ctx, selectLatestDatasetQuery)
	if err != nil {
		return data.Dataset{}, handleSQLError(err)
	}
	var (
		dataset data.Dataset
		id      string
	)
	err = row.Scan(&id, &dataset.LoadedAt, &dataset.TotalOrders, &dataset.FileCount)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return data.Dataset{}, data.ErrNoDataset
		default:
			return data.Dataset{}, handleSQLError(err)
		}
	}
	dataset.ID, err = uuid.Parse(id)
	if err != nil {
		return data.Dataset{}, fmt.Errorf("failed to parse dataset id %q: %w", id, err)
	}
	return dataset, nil
}

const selectDatasetOrdersQuery = `SELECT tracking_number, order_number, source, origin_file, items, shipping_provider, total_amount
FROM dataset_orders
WHERE dataset_id = ?
ORDER BY rowid`

func (r *SQLiteRepository) GetDatasetOrders(ctx context.Context, datasetID uuid.UUID) ([]data.Order, error) {
	rows, err := r.storage.Query(ctx, selectDatasetOrdersQuery, datasetID.String())
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close() //nolint:errcheck // read-only

	result := make([]data.Order, 0)
	for rows.Next() {
		order := data.Order{
			DatasetID: datasetID,
		}
		var items, amount string
		err := rows.Scan(
			&order.TrackingNumber,
			&order.OrderNumber,
			&order.Source,
			&order.OriginFile,
			&items,
			&order.ShippingProvider,
			&amount,
		)
		if err != nil {
			return nil, handleSQLError(err)
		}
		if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items of %s: %w", order.TrackingNumber, err)
		}
		if err := order.TotalAmount.Scan(amount); err != nil {
			return nil, fmt.Errorf("failed to parse total amount of %s: %w", order.TrackingNumber, err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

const selectScanEventsQuery = `SELECT tracking_number, order_number, source, origin_file, scanned_at
FROM scan_events
WHERE dataset_id = ?
ORDER BY scanned_at, id`

func (r *SQLiteRepository) GetScanEvents(ctx context.Context, datasetID uuid.UUID) ([]data.ScanEvent, error) {
	rows, err := r.storage.Query(ctx, selectScanEventsQuery, datasetID.String())
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close() //nolint:errcheck // read-only

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
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", data.ErrUniqueConstraintViolation, sqliteErr.Error())
		}
	}
	return err
}
