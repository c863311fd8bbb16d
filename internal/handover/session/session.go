package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-handover/pkg/logging"
)

var (
	ErrCorruptedState = errors.New("session state is corrupted")
)

// Journal makes a successful scan durable before it is credited.
type Journal interface {
	AppendScanEvent(ctx context.Context, datasetID uuid.UUID, event ScanEvent) error
}

type nopJournal struct{}

func (nopJournal) AppendScanEvent(context.Context, uuid.UUID, ScanEvent) error {
	return nil
}

type LoadSummary struct {
	DatasetID   uuid.UUID
	TotalOrders int
	BySource    map[Source]int
	FileCount   int
	Skipped     int
}

type dataset struct {
	id       uuid.UUID
	registry *Registry
	guard    *Guard
	stats    *Aggregator
	history  *History
	// commit serializes claim, journal write and stats/history update so the
	// history stays in scannedAt order.
	commit sync.Mutex
}

func newDataset(id uuid.UUID, orders []Order) *dataset {
	registry := NewRegistry(orders)
	return &dataset{
		id:       id,
		registry: registry,
		guard:    NewGuard(registry.trackingNumbers()),
		stats:    NewAggregator(registry.Len(), registry.CountBySource()),
		history:  NewHistory(registry.Len()),
	}
}

func (d *dataset) summary() LoadSummary {
	return LoadSummary{
		DatasetID:   d.id,
		TotalOrders: d.registry.Len(),
		BySource:    d.registry.CountBySource(),
		FileCount:   d.registry.FileCount(),
		Skipped:     d.registry.Skipped(),
	}
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithJournal(journal Journal) Option {
	return func(s *Session) {
		s.journal = journal
	}
}

// Session owns the active dataset and everything derived from it. Scans hold
// a read lock for their whole duration, so a Load waits for in-flight scans
// to settle and then swaps registry, guard, stats and history together.
type Session struct {
	mu      sync.RWMutex
	active  *dataset
	journal Journal
	now     func() time.Time
	logger  *logging.ZapLogger
}

func New(logger *logging.ZapLogger, opts ...Option) *Session {
	s := &Session{
		journal: nopJournal{},
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the active dataset. All scan state of the previous dataset is dropped.
func (s *Session) Load(id uuid.UUID, orders []Order) LoadSummary {
	ds := newDataset(id, orders)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ds

	summary := ds.summary()
	s.logger.InfoCtx(
		context.Background(),
		"dataset loaded",
		zap.Stringer("datasetID", id),
		zap.Int("totalOrders", summary.TotalOrders),
		zap.Int("fileCount", summary.FileCount),
		zap.Int("skipped", summary.Skipped),
	)
	return summary
}

// Resume loads a dataset and replays previously journaled scans in order.
// Events for unknown or already credited orders are skipped.
func (s *Session) Resume(id uuid.UUID, orders []Order, events []ScanEvent) (LoadSummary, error) {
	ds := newDataset(id, orders)
	replayed := 0
	for _, event := range events {
		order, ok := ds.registry.Lookup(event.TrackingNumber)
		if !ok {
			s.logger.WarnCtx(context.Background(), "journaled scan has no order", zap.String("trackingNumber", event.TrackingNumber))
			continue
		}
		outcome, _, err := ds.guard.TryClaim(order.TrackingNumber, event.ScannedAt)
		if err != nil {
			return LoadSummary{}, fmt.Errorf("failed to replay scan of %s: %w", order.TrackingNumber, err)
		}
		if outcome == AlreadyClaimed {
			continue
		}
		if err := ds.stats.RecordSuccess(order); err != nil {
			return LoadSummary{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
		}
		ds.history.Append(newScanEvent(order, event.ScannedAt))
		replayed++
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ds

	s.logger.InfoCtx(
		context.Background(),
		"dataset resumed",
		zap.Stringer("datasetID", id),
		zap.Int("totalOrders", ds.registry.Len()),
		zap.Int("replayedScans", replayed),
	)
	return ds.summary(), nil
}

// Scan reconciles one raw scanned code against the active dataset. Domain
// outcomes are reported through Result.Kind; the error is reserved for
// journal failures and corrupted state.
func (s *Session) Scan(ctx context.Context, raw string) (Result, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return Result{Kind: KindIgnored}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ds := s.active
	if ds == nil {
		return Result{Kind: KindUninitialized, Code: code}, nil
	}

	order, ok := ds.registry.Lookup(code)
	if !ok {
		return Result{Kind: KindNotFound, Code: code}, nil
	}

	ds.commit.Lock()
	defer ds.commit.Unlock()

	outcome, scannedAt, err := ds.guard.TryClaim(order.TrackingNumber, s.now())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
	}
	if outcome == AlreadyClaimed {
		return Result{
			DatasetID:           ds.id,
			Kind:                KindDuplicate,
			Code:                code,
			Order:               &order,
			PreviouslyScannedAt: scannedAt,
		}, nil
	}

	event := newScanEvent(order, scannedAt)
	if err := s.journal.AppendScanEvent(ctx, ds.id, event); err != nil {
		ds.guard.Release(order.TrackingNumber)
		return Result{}, fmt.Errorf("failed to journal scan of %s: %w", code, err)
	}
	if err := ds.stats.RecordSuccess(order); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
	}
	ds.history.Append(event)

	return Result{
		DatasetID: ds.id,
		Kind:      KindSuccess,
		Code:      code,
		Event:     event,
		Order:     &order,
	}, nil
}

// Stats returns the counters of the active dataset, all zero before the first load.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return emptyStats()
	}
	return s.active.stats.Snapshot()
}

// Recent returns up to limit successful scans, newest first.
func (s *Session) Recent(limit int) []ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return []ScanEvent{}
	}
	return s.active.history.Recent(limit)
}

// History returns every successful scan of the active dataset in scan order.
func (s *Session) History() []ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return []ScanEvent{}
	}
	return s.active.history.All()
}

func (s *Session) DatasetID() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return uuid.Nil, false
	}
	return s.active.id, true
}

// CheckInvariants cross-checks stats, guard and history of the active dataset.
func (s *Session) CheckInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds := s.active
	if ds == nil {
		return nil
	}
	ds.commit.Lock()
	defer ds.commit.Unlock()

	stats := ds.stats.Snapshot()
	switch {
	case stats.ScannedCount+stats.Remaining != stats.TotalOrders:
		return fmt.Errorf("%w: scanned %d + remaining %d != total %d",
			ErrCorruptedState, stats.ScannedCount, stats.Remaining, stats.TotalOrders)
	case stats.ScannedCount != ds.guard.ClaimedCount():
		return fmt.Errorf("%w: scanned %d != claimed %d",
			ErrCorruptedState, stats.ScannedCount, ds.guard.ClaimedCount())
	case stats.ScannedCount != ds.history.Len():
		return fmt.Errorf("%w: scanned %d != history %d",
			ErrCorruptedState, stats.ScannedCount, ds.history.Len())
	}
	return nil
}
