package catalog

import (
	"context"
	"fmt"
	"sync"
)

//
// --------------------------- Memory Store -----------------------------
//
// Two complementary structures:
//
// 1) records (map): key = product ID, value = Record
//    - O(1) random access by ID
//
// 2) order ([]int64): IDs in insertion order
//    - deterministic ListAll output, which the stable sorts rely on for tie order
//

// MemoryStore is an in-process Store. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]Record
	order   []int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Record)}
}

var (
	seedBrands     = []string{"Alpha", "Beta", "Gamma", "Delta", "Omega"}
	seedCategories = []string{"Electronics", "Books", "Home", "Toys", "Fashion"}
	seedKinds      = []string{"Laptop", "Lamp", "Chair", "Headphones", "Notebook", "Kettle", "Puzzle", "Jacket"}
)

// Seed replaces the contents with n generated products (defaults to 1,000).
//   - Brands/categories rotate via modulo for a predictable distribution
//   - Name format: "<Brand> <Kind> <ID>", e.g. "Alpha Laptop 1"
//   - Every 7th product has no rating, every 11th has no SKU
func (s *MemoryStore) Seed(n int) {
	if n <= 0 {
		n = 1000
	}

	records := make(map[int64]Record, n)
	order := make([]int64, 0, n)

	for i := 1; i <= n; i++ {
		id := int64(i)
		brand := seedBrands[(i-1)%len(seedBrands)]
		kind := seedKinds[(i-1)%len(seedKinds)]

		r := Record{
			Key:        id,
			Name:       fmt.Sprintf("%s %s %d", brand, kind, i),
			Brand:      brand,
			Category:   seedCategories[(i-1)%len(seedCategories)],
			PriceCents: int64((i*37)%500+1) * 100,
			Stock:      (i * 13) % 50,
		}
		if i%7 != 0 {
			rating := float64((i*3)%50) / 10
			r.Rating = &rating
		}
		if i%11 != 0 {
			r.SKU = GenerateSKU(r.Name, id)
		}

		records[id] = r
		order = append(order, id)
	}

	s.mu.Lock()
	s.records = records
	s.order = order
	s.mu.Unlock()
}

// ListAll returns a copy of all records in insertion order.
func (s *MemoryStore) ListAll(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

// FindByKey returns the record for key.
func (s *MemoryStore) FindByKey(_ context.Context, key int64) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[key]
	return r, ok, nil
}

// Upsert inserts or replaces a record. New keys go to the end of the listing order.
func (s *MemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.Key]; !exists {
		s.order = append(s.order, record.Key)
	}
	s.records[record.Key] = record
	return nil
}

// Delete removes a record. Deleting a missing key is a no-op.
func (s *MemoryStore) Delete(_ context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; !exists {
		return nil
	}
	delete(s.records, key)
	for i, id := range s.order {
		if id == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
