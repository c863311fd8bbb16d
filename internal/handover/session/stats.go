package session

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrStatsOverflow = errors.New("scanned count exceeds total orders")
)

type Stats struct {
	TotalOrders     int
	BySource        map[Source]int
	ScannedCount    int
	Remaining       int
	ScannedBySource map[Source]int
}

type Aggregator struct {
	mu              sync.RWMutex
	total           int
	bySource        map[Source]int
	scanned         int
	scannedBySource map[Source]int
}

func NewAggregator(total int, bySource map[Source]int) *Aggregator {
	counts := make(map[Source]int, len(bySource))
	for source, count := range bySource {
		counts[source] = count
	}
	return &Aggregator{
		total:           total,
		bySource:        counts,
		scannedBySource: make(map[Source]int, len(Sources)),
	}
}

// RecordSuccess credits one claimed order. It must be called once per Claimed outcome.
func (a *Aggregator) RecordSuccess(order Order) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scanned >= a.total {
		return fmt.Errorf("%w: order %s", ErrStatsOverflow, order.TrackingNumber)
	}
	a.scanned++
	a.scannedBySource[order.Source]++
	return nil
}

func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res := Stats{
		TotalOrders:     a.total,
		BySource:        make(map[Source]int, len(Sources)),
		ScannedCount:    a.scanned,
		Remaining:       a.total - a.scanned,
		ScannedBySource: make(map[Source]int, len(Sources)),
	}
	for _, source := range Sources {
		res.BySource[source] = a.bySource[source]
		res.ScannedBySource[source] = a.scannedBySource[source]
	}
	return res
}

func emptyStats() Stats {
	return NewAggregator(0, nil).Snapshot()
}
