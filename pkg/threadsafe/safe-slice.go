package threadsafe

import "sync"

// SafeSlice is an append-only slice guarded by a RWMutex.
type SafeSlice[T any] struct {
	inner []T
	mux   *sync.RWMutex
}

func NewSafeSlice[T any](capacity int) *SafeSlice[T] {
	return &SafeSlice[T]{
		inner: make([]T, 0, capacity),
		mux:   &sync.RWMutex{},
	}
}

func (s *SafeSlice[T]) Size() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.inner)
}

func (s *SafeSlice[T]) Append(v T) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.inner = append(s.inner, v)
}

// Last returns up to n trailing elements, newest first. n <= 0 returns all of them.
func (s *SafeSlice[T]) Last(n int) []T {
	s.mux.RLock()
	defer s.mux.RUnlock()
	size := len(s.inner)
	if n <= 0 || n > size {
		n = size
	}
	res := make([]T, n)
	for i := range n {
		res[i] = s.inner[size-1-i]
	}
	return res
}

// Snapshot returns a copy in insertion order.
func (s *SafeSlice[T]) Snapshot() []T {
	s.mux.RLock()
	defer s.mux.RUnlock()
	res := make([]T, len(s.inner))
	copy(res, s.inner)
	return res
}
