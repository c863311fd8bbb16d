package threadsafe

import (
	"sync"
	"time"
)

type Time struct {
	time time.Time
	mux  *sync.Mutex
}

func NewTime(t time.Time) *Time {
	return &Time{
		time: t,
		mux:  &sync.Mutex{},
	}
}

func (t *Time) Get() time.Time {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.time
}

func (t *Time) Set(value time.Time) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.time = value
}

// SetIf stores value when condition holds for the current time and reports whether it did.
func (t *Time) SetIf(value time.Time, condition func(current time.Time) bool) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	if condition(t.time) {
		t.time = value
		return true
	}
	return false
}
