package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-handover/internal/common/notifyprotocol"
	"go-handover/internal/handover/data"
	"go-handover/internal/handover/session"
	"go-handover/pkg/logging"
)

type nopNotifier struct{}

func (nopNotifier) Notify(notifyprotocol.Message) bool {
	return false
}

// journal persists successful scans through the repository before the session credits them.
type journal struct {
	repository Repository
}

func (j journal) AppendScanEvent(ctx context.Context, datasetID uuid.UUID, event session.ScanEvent) error {
	err := j.repository.InsertScanEvent(ctx, toDataScanEvent(datasetID, event))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJournalUnavailable, err)
	}
	return nil
}

type Option func(*Handover)

// WithJournal makes loads and successful scans durable.
func WithJournal(repository Repository, transactionManager TransactionManager) Option {
	return func(h *Handover) {
		h.repository = repository
		h.transactionManager = transactionManager
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(h *Handover) {
		h.notifier = notifier
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handover) {
		h.now = now
	}
}

// Handover is the application service in front of the scan session.
type Handover struct {
	session            *session.Session
	repository         Repository
	transactionManager TransactionManager
	notifier           Notifier
	now                func() time.Time
	logger             *logging.ZapLogger
	// loadMu keeps journal writes of concurrent loads in the same order as the session swaps.
	loadMu sync.Mutex
}

func NewHandover(logger *logging.ZapLogger, opts ...Option) *Handover {
	h := &Handover{
		notifier: nopNotifier{},
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	sessionOpts := []session.Option{session.WithClock(h.now)}
	if h.repository != nil {
		sessionOpts = append(sessionOpts, session.WithJournal(journal{repository: h.repository}))
	}
	h.session = session.New(logger, sessionOpts...)
	return h
}

// LoadDataset replaces the active dataset with orders.
func (h *Handover) LoadDataset(ctx context.Context, orders []session.Order) (session.LoadSummary, error) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return session.LoadSummary{}, fmt.Errorf("failed to generate dataset id: %w", err)
	}

	if h.repository != nil {
		registry := session.NewRegistry(orders)
		if err := h.persistDataset(ctx, id, registry); err != nil {
			return session.LoadSummary{}, err
		}
	}

	return h.session.Load(id, orders), nil
}

func (h *Handover) persistDataset(ctx context.Context, id uuid.UUID, registry *session.Registry) error {
	indexed := registry.Orders()
	rows := make([]data.Order, 0, len(indexed))
	for _, order := range indexed {
		rows = append(rows, toDataOrder(id, order))
	}
	dataset := data.Dataset{
		ID:          id,
		LoadedAt:    h.now(),
		TotalOrders: registry.Len(),
		FileCount:   registry.FileCount(),
	}

	err := h.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		if err := h.repository.InsertDataset(ctx, dataset); err != nil {
			return fmt.Errorf("error inserting dataset: %w", err)
		}
		if err := h.repository.InsertOrders(ctx, id, rows); err != nil {
			return fmt.Errorf("error inserting orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJournalUnavailable, err)
	}
	return nil
}

// Scan reconciles raw against the active dataset. Successful scans are handed
// to the notifier without waiting for delivery.
func (h *Handover) Scan(ctx context.Context, raw string) (session.Result, error) {
	result, err := h.session.Scan(ctx, raw)
	if err != nil {
		h.logger.ErrorCtx(ctx, "scan failed", zap.String("code", raw), zap.Error(err))
		return session.Result{}, err
	}

	switch result.Kind {
	case session.KindSuccess:
		h.logger.InfoCtx(
			ctx,
			"order scanned",
			zap.String("trackingNumber", result.Event.TrackingNumber),
			zap.String("orderNumber", result.Event.OrderNumber),
			zap.String("source", string(result.Event.Source)),
		)
		if !h.notifier.Notify(toNotification(result.DatasetID, result.Event)) {
			h.logger.DebugCtx(ctx, "scan notification not queued", zap.String("trackingNumber", result.Code))
		}
	case session.KindIgnored:
	default:
		h.logger.DebugCtx(ctx, "scan rejected", zap.String("code", result.Code), zap.String("kind", string(result.Kind)))
	}
	return result, nil
}

func (h *Handover) Recent(limit int) []session.ScanEvent {
	if limit <= 0 {
		limit = session.DefaultHistoryLimit
	}
	return h.session.Recent(limit)
}

func (h *Handover) History() []session.ScanEvent {
	return h.session.History()
}

func (h *Handover) Stats() session.Stats {
	return h.session.Stats()
}

func (h *Handover) Health() error {
	return h.session.CheckInvariants() //nolint:wrapcheck // sentinel
}

// Resume restores the latest journaled dataset and its scans. Without a
// journal, or with an empty one, the session stays uninitialized.
func (h *Handover) Resume(ctx context.Context) (session.LoadSummary, bool, error) {
	if h.repository == nil {
		return session.LoadSummary{}, false, nil
	}

	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	dataset, err := h.repository.GetLatestDataset(ctx)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoDataset):
			h.logger.InfoCtx(ctx, "journal is empty, waiting for a dataset")
			return session.LoadSummary{}, false, nil
		default:
			return session.LoadSummary{}, false, fmt.Errorf("%w: %w", ErrResumeFailed, err)
		}
	}

	rows, err := h.repository.GetDatasetOrders(ctx, dataset.ID)
	if err != nil {
		return session.LoadSummary{}, false, fmt.Errorf("%w: %w", ErrResumeFailed, err)
	}
	journaled, err := h.repository.GetScanEvents(ctx, dataset.ID)
	if err != nil {
		return session.LoadSummary{}, false, fmt.Errorf("%w: %w", ErrResumeFailed, err)
	}

	orders := make([]session.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, fromDataOrder(row))
	}
	events := make([]session.ScanEvent, 0, len(journaled))
	for _, event := range journaled {
		events = append(events, fromDataScanEvent(event))
	}

	summary, err := h.session.Resume(dataset.ID, orders, events)
	if err != nil {
		return session.LoadSummary{}, false, fmt.Errorf("%w: %w", ErrResumeFailed, err)
	}
	return summary, true, nil
}
