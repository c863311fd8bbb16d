package session

import "go-handover/pkg/threadsafe"

const DefaultHistoryLimit = 10

// History is the append-only log of successful scans of one dataset.
type History struct {
	events *threadsafe.SafeSlice[ScanEvent]
}

func NewHistory(capacity int) *History {
	return &History{
		events: threadsafe.NewSafeSlice[ScanEvent](capacity),
	}
}

func (h *History) Append(event ScanEvent) {
	h.events.Append(event)
}

// Recent returns at most limit events, newest first. limit <= 0 returns the whole log.
func (h *History) Recent(limit int) []ScanEvent {
	return h.events.Last(limit)
}

// All returns the log in scan order.
func (h *History) All() []ScanEvent {
	return h.events.Snapshot()
}

func (h *History) Len() int {
	return h.events.Size()
}
