package threadsafe

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashSet_AddIsExclusive(t *testing.T) {
	set := NewHashSet[string]()
	var wins atomic.Int32
	wg := sync.WaitGroup{}
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Add("SPX001") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.True(t, set.Contains("SPX001"))
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Remove("SPX001"))
	assert.False(t, set.Remove("SPX001"))
}

func TestSafeSlice_Last(t *testing.T) {
	tests := []struct {
		name     string
		items    []int
		n        int
		expected []int
	}{
		{name: "empty", items: nil, n: 3, expected: []int{}},
		{name: "fewer than n", items: []int{1, 2}, n: 5, expected: []int{2, 1}},
		{name: "exact n", items: []int{1, 2, 3}, n: 2, expected: []int{3, 2}},
		{name: "all", items: []int{1, 2, 3}, n: 0, expected: []int{3, 2, 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewSafeSlice[int](0)
			for _, item := range test.items {
				s.Append(item)
			}
			assert.Equal(t, test.expected, s.Last(test.n))
			assert.Equal(t, len(test.items), s.Size())
		})
	}
}

func TestSafeSlice_SnapshotIsCopy(t *testing.T) {
	s := NewSafeSlice[int](2)
	s.Append(1)
	snapshot := s.Snapshot()
	s.Append(2)
	assert.Equal(t, []int{1}, snapshot)
}

func TestTime_SetIf(t *testing.T) {
	tm := NewTime(time.Time{})
	first := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	isZero := func(current time.Time) bool { return current.IsZero() }

	assert.True(t, tm.SetIf(first, isZero))
	assert.False(t, tm.SetIf(first.Add(time.Minute), isZero))
	assert.Equal(t, first, tm.Get())

	tm.Set(time.Time{})
	assert.True(t, tm.Get().IsZero())
}
