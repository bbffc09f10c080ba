package stats

import (
	"errors"
	"sort"
	"time"
)

// WindowRadius is how many records on each side of a match are considered
// neighbors.
const WindowRadius = 3

// ErrEmptySeries is returned when a lookup runs against a series with no
// records.
var ErrEmptySeries = errors.New("empty series")

// Nearest returns the index of the element in series whose time is closest
// to q. series must be sorted ascending by timeOf. On an exact tie the
// earlier element wins.
func Nearest[T any](series []T, timeOf func(T) time.Time, q time.Time) (int, error) {
	n := len(series)
	if n == 0 {
		return -1, ErrEmptySeries
	}

	// Left-biased insertion point: everything before idx is strictly earlier.
	idx := sort.Search(n, func(i int) bool {
		return !timeOf(series[i]).Before(q)
	})

	switch idx {
	case 0:
		return 0, nil
	case n:
		return n - 1, nil
	}

	before := absDuration(q.Sub(timeOf(series[idx-1])))
	after := absDuration(timeOf(series[idx]).Sub(q))
	if after < before {
		return idx, nil
	}
	return idx - 1, nil
}

// Neighbors splits the window [m-WindowRadius, m+WindowRadius] around the
// matched index m into past and future records. past is ordered most recent
// first, future is ordered ascending. Records sharing the match's time land
// in neither.
func Neighbors[T any](series []T, timeOf func(T) time.Time, m int) (past, future []T) {
	past = make([]T, 0, WindowRadius)
	future = make([]T, 0, WindowRadius)
	if m < 0 || m >= len(series) {
		return past, future
	}

	start := max(0, m-WindowRadius)
	end := min(len(series), m+WindowRadius+1)
	matched := timeOf(series[m])

	for i := start; i < end; i++ {
		if i == m {
			continue
		}
		t := timeOf(series[i])
		switch {
		case t.Before(matched) && len(past) < WindowRadius:
			past = append(past, series[i])
		case t.After(matched) && len(future) < WindowRadius:
			future = append(future, series[i])
		}
	}

	sort.SliceStable(past, func(i, j int) bool {
		return timeOf(past[i]).After(timeOf(past[j]))
	})
	sort.SliceStable(future, func(i, j int) bool {
		return timeOf(future[i]).Before(timeOf(future[j]))
	})
	return past, future
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
