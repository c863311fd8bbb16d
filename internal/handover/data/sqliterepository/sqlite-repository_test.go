package sqliterepository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-handover/internal/handover/data"
	"go-handover/internal/handover/data/dbstorage"
	"go-handover/pkg/logging"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	storage, err := dbstorage.New(dbstorage.NewSQLiteFactory(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.Close()
	})
	return New(storage, logging.NewNop())
}

func TestDatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.GetLatestDataset(ctx)
	require.ErrorIs(t, err, data.ErrNoDataset)

	older := data.Dataset{
		ID:          uuid.New(),
		LoadedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		TotalOrders: 1,
		FileCount:   1,
	}
	newer := data.Dataset{
		ID:          uuid.New(),
		LoadedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		TotalOrders: 2,
		FileCount:   2,
	}
	require.NoError(t, repo.InsertDataset(ctx, older))
	require.NoError(t, repo.InsertDataset(ctx, newer))

	latest, err := repo.GetLatestDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.True(t, newer.LoadedAt.Equal(latest.LoadedAt))
	assert.Equal(t, 2, latest.TotalOrders)
	assert.Equal(t, 2, latest.FileCount)

	err = repo.InsertDataset(ctx, newer)
	assert.ErrorIs(t, err, data.ErrUniqueConstraintViolation)
}

func TestOrdersRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	dataset := data.Dataset{ID: uuid.New(), LoadedAt: time.Now(), TotalOrders: 2, FileCount: 1}
	require.NoError(t, repo.InsertDataset(ctx, dataset))

	orders := []data.Order{
		{
			TrackingNumber: "TT900",
			OrderNumber:    "SPX001",
			Source:         "shopee",
			OriginFile:     "shopee.xlsx",
			Items: []data.LineItem{
				{SKU: "A-1", Name: "Mug", Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
			},
			ShippingProvider: "SPX",
			TotalAmount:      decimal.RequireFromString("9.00"),
		},
		{
			TrackingNumber: "TT901",
			OrderNumber:    "TK002",
			Source:         "tiktok",
			OriginFile:     "tiktok.csv",
			TotalAmount:    decimal.Zero,
		},
	}
	require.NoError(t, repo.InsertOrders(ctx, dataset.ID, orders))

	got, err := repo.GetDatasetOrders(ctx, dataset.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SPX001", got[0].OrderNumber)
	assert.Equal(t, dataset.ID, got[0].DatasetID)
	require.Len(t, got[0].Items, 1)
	assert.True(t, got[0].Items[0].UnitPrice.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, got[0].TotalAmount.Equal(decimal.RequireFromString("9")))
	assert.Empty(t, got[1].Items)

	other, err := repo.GetDatasetOrders(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInsertOrdersRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	dataset := data.Dataset{ID: uuid.New(), LoadedAt: time.Now(), TotalOrders: 2, FileCount: 1}
	require.NoError(t, repo.InsertDataset(ctx, dataset))

	orders := []data.Order{
		{TrackingNumber: "TT900", OrderNumber: "SPX001", Source: "shopee", OriginFile: "a.xlsx"},
		{TrackingNumber: "TT900", OrderNumber: "SPX001", Source: "shopee", OriginFile: "a.xlsx"},
	}
	err := repo.InsertOrders(ctx, dataset.ID, orders)
	require.ErrorIs(t, err, data.ErrUniqueConstraintViolation)

	got, err := repo.GetDatasetOrders(ctx, dataset.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScanEventsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	dataset := data.Dataset{ID: uuid.New(), LoadedAt: time.Now(), TotalOrders: 2, FileCount: 1}
	require.NoError(t, repo.InsertDataset(ctx, dataset))

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("ICT", 7*60*60))
	events := []data.ScanEvent{
		{
			DatasetID:      dataset.ID,
			TrackingNumber: "TT901",
			OrderNumber:    "TK002",
			Source:         "tiktok",
			OriginFile:     "tiktok.csv",
			ScannedAt:      first.Add(time.Second),
		},
		{
			DatasetID:      dataset.ID,
			TrackingNumber: "TT900",
			OrderNumber:    "SPX001",
			Source:         "shopee",
			OriginFile:     "shopee.xlsx",
			ScannedAt:      first,
		},
	}
	for _, event := range events {
		require.NoError(t, repo.InsertScanEvent(ctx, event))
	}

	err := repo.InsertScanEvent(ctx, events[0])
	require.ErrorIs(t, err, data.ErrUniqueConstraintViolation)

	got, err := repo.GetScanEvents(ctx, dataset.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TT900", got[0].TrackingNumber)
	assert.True(t, first.Equal(got[0].ScannedAt))
	assert.Equal(t, "TT901", got[1].TrackingNumber)
	assert.Equal(t, "tiktok.csv", got[1].OriginFile)
}
