package engine

import (
	"container/heap"

	"shopwave-catalog/catalog"
)

// priceHeap is a container/heap min-heap keyed by price.
type priceHeap []catalog.Record

func (h priceHeap) Len() int           { return len(h) }
func (h priceHeap) Less(i, j int) bool { return h[i].PriceCents < h[j].PriceCents }
func (h priceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *priceHeap) Push(x any) { *h = append(*h, x.(catalog.Record)) }

func (h *priceHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopKCheapest returns the min(k, n) lowest-priced records, cheapest first. Among equal
// prices the order is whatever the heap yields.
// Time complexity: O(n + k log n)
func TopKCheapest(records []catalog.Record, k int) []catalog.Record {
	if k <= 0 || len(records) == 0 {
		return []catalog.Record{}
	}

	h := make(priceHeap, len(records))
	copy(h, records)
	heap.Init(&h)

	count := min(k, len(records))
	out := make([]catalog.Record, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, heap.Pop(&h).(catalog.Record))
	}
	return out
}

// MedianByPrice returns the record at index n/2 of the records as if sorted ascending by
// price. It returns false for an empty input.
//
// Quickselect with Lomuto partitioning around the last element of the current range.
// Average O(n); already-sorted or reverse-sorted input degrades it to O(n²) because the
// last-element pivot then splits off one element per round.
func MedianByPrice(records []catalog.Record) (catalog.Record, bool) {
	if len(records) == 0 {
		return catalog.Record{}, false
	}
	work := make([]catalog.Record, len(records))
	copy(work, records)
	return quickSelect(work, len(work)/2), true
}

// quickSelect reorders s and returns the element of rank k.
func quickSelect(s []catalog.Record, k int) catalog.Record {
	left, right := 0, len(s)-1
	for left < right {
		p := partition(s, left, right)
		switch {
		case k == p:
			return s[k]
		case k < p:
			right = p - 1
		default:
			left = p + 1
		}
	}
	return s[left]
}

// partition moves every element <= the pivot (s[right]) left of it and returns the
// pivot's final index.
func partition(s []catalog.Record, left, right int) int {
	pivot := s[right].PriceCents
	i := left - 1
	for j := left; j < right; j++ {
		if s[j].PriceCents <= pivot {
			i++
			s[i], s[j] = s[j], s[i]
		}
	}
	s[i+1], s[right] = s[right], s[i+1]
	return i + 1
}
