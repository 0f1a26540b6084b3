package engine

import (
	"sort"

	"shopwave-catalog/catalog"
)

// precedes reports whether b must be placed strictly before a. The merge takes from the
// left run unless the right element strictly precedes it, which is what keeps the sort stable.
type precedes func(a, b catalog.Record) bool

// SortByPrice returns a new slice ordered by price, ascending or descending. Records with
// equal prices keep their input order.
// Time complexity: O(n log n), recursion depth log2(n)
func SortByPrice(records []catalog.Record, ascending bool) []catalog.Record {
	if ascending {
		return mergeSort(records, func(a, b catalog.Record) bool { return b.PriceCents < a.PriceCents })
	}
	return mergeSort(records, func(a, b catalog.Record) bool { return b.PriceCents > a.PriceCents })
}

// SortByRating returns a new slice ordered by rating, highest first. An absent rating
// counts as 0. Ties keep input order.
func SortByRating(records []catalog.Record) []catalog.Record {
	return mergeSort(records, func(a, b catalog.Record) bool { return b.RatingOrZero() > a.RatingOrZero() })
}

func mergeSort(records []catalog.Record, before precedes) []catalog.Record {
	out := make([]catalog.Record, len(records))
	copy(out, records)
	if len(out) <= 1 {
		return out
	}
	scratch := make([]catalog.Record, len(out))
	sortRange(out, scratch, before)
	return out
}

// sortRange sorts s in place, using scratch (same length) as merge space.
func sortRange(s, scratch []catalog.Record, before precedes) {
	if len(s) <= 1 {
		return
	}
	mid := len(s) / 2
	sortRange(s[:mid], scratch[:mid], before)
	sortRange(s[mid:], scratch[mid:], before)

	left, right := s[:mid], s[mid:]
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if before(left[i], right[j]) {
			scratch[k] = right[j]
			j++
		} else {
			scratch[k] = left[i]
			i++
		}
		k++
	}
	k += copy(scratch[k:], left[i:])
	copy(scratch[k:], right[j:])
	copy(s, scratch)
}

// IsSortedByPrice reports whether records are in non-decreasing price order, the
// precondition of FilterByPriceRange.
func IsSortedByPrice(records []catalog.Record) bool {
	for i := 1; i < len(records); i++ {
		if records[i].PriceCents < records[i-1].PriceCents {
			return false
		}
	}
	return true
}

// FilterByPriceRange returns the contiguous run of records with minCents <= price <= maxCents.
//
// sorted MUST already be ordered ascending by price (see SortByPrice, IsSortedByPrice).
// The range is located with two binary searches and is not validated; an unsorted input
// yields an arbitrary, incorrect run. The result shares sorted's backing array with its
// capacity clipped, so appending to it cannot overwrite sorted.
// Time complexity: O(log n)
func FilterByPriceRange(sorted []catalog.Record, minCents, maxCents int64) []catalog.Record {
	lo := sort.Search(len(sorted), func(i int) bool { return sorted[i].PriceCents >= minCents })
	hi := sort.Search(len(sorted), func(i int) bool { return sorted[i].PriceCents > maxCents })
	if hi <= lo {
		return []catalog.Record{}
	}
	return sorted[lo:hi:hi]
}
