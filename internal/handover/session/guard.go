package session

import (
	"errors"
	"fmt"
	"time"

	"go-handover/pkg/threadsafe"
)

var (
	ErrUnknownTrackingNumber = errors.New("tracking number is not guarded")
)

type ClaimOutcome int

const (
	Claimed ClaimOutcome = iota
	AlreadyClaimed
)

type ScanState struct {
	Scanned   bool
	ScannedAt time.Time
}

// Guard credits each order at most once. The per-order timestamp doubles as
// the scanned flag: a claim is a compare-and-set from the zero time.
type Guard struct {
	states  map[string]*threadsafe.Time
	claimed *threadsafe.HashSet[string]
}

func NewGuard(trackingNumbers []string) *Guard {
	states := make(map[string]*threadsafe.Time, len(trackingNumbers))
	for _, trackingNumber := range trackingNumbers {
		states[trackingNumber] = threadsafe.NewTime(time.Time{})
	}
	return &Guard{
		states:  states,
		claimed: threadsafe.NewHashSet[string](),
	}
}

// TryClaim marks trackingNumber as scanned at the given time. On AlreadyClaimed
// the returned time is the one recorded by the winning claim.
func (g *Guard) TryClaim(trackingNumber string, at time.Time) (ClaimOutcome, time.Time, error) {
	state, ok := g.states[trackingNumber]
	if !ok {
		return AlreadyClaimed, time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTrackingNumber, trackingNumber)
	}
	if at.IsZero() {
		return AlreadyClaimed, time.Time{}, fmt.Errorf("claim time must be set for %s", trackingNumber)
	}
	if !state.SetIf(at, isUnclaimed) {
		return AlreadyClaimed, state.Get(), nil
	}
	g.claimed.Add(trackingNumber)
	return Claimed, at, nil
}

// Release undoes a claim whose side effects could not be made durable.
func (g *Guard) Release(trackingNumber string) {
	state, ok := g.states[trackingNumber]
	if !ok {
		return
	}
	g.claimed.Remove(trackingNumber)
	state.Set(time.Time{})
}

func (g *Guard) State(trackingNumber string) (ScanState, bool) {
	state, ok := g.states[trackingNumber]
	if !ok {
		return ScanState{}, false
	}
	scannedAt := state.Get()
	return ScanState{
		Scanned:   !scannedAt.IsZero(),
		ScannedAt: scannedAt,
	}, true
}

func (g *Guard) ClaimedCount() int {
	return g.claimed.Len()
}

func isUnclaimed(current time.Time) bool {
	return current.IsZero()
}
