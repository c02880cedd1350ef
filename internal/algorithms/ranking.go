package algorithms

import (
	"sort"
	"time"
)

// Rankable is one search hit before ordering.
type Rankable struct {
	ID         string
	Featured   bool
	DistanceKm *float64
	UpdatedAt  time.Time
}

// RankResults orders hits featured first, then nearest when a distance is
// known, then most recently updated. IDs break remaining ties so paging is
// stable.
func RankResults(items []Rankable) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if (a.DistanceKm == nil) != (b.DistanceKm == nil) {
			return a.DistanceKm != nil
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// Page returns the bounds of a 1-based page over n items.
func Page(n, page, pageSize int) (start, end int) {
	if page < 1 {
		page = 1
	}
	start = (page - 1) * pageSize
	if start > n {
		start = n
	}
	end = start + pageSize
	if end > n {
		end = n
	}
	return start, end
}
