package engine

import (
	"sync"

	"shopwave-catalog/catalog"
)

// KeyIndex maps SKU to record for O(1) point lookup. Records without a SKU are skipped;
// on duplicate SKUs the last record wins.
type KeyIndex struct {
	mu    sync.RWMutex
	bySKU map[string]catalog.Record
}

// BuildKeyIndex scans records into a new index.
func BuildKeyIndex(records []catalog.Record) *KeyIndex {
	return &KeyIndex{bySKU: indexBySKU(records)}
}

func indexBySKU(records []catalog.Record) map[string]catalog.Record {
	m := make(map[string]catalog.Record, len(records))
	for _, r := range records {
		if r.HasSKU() {
			m[r.SKU] = r
		}
	}
	return m
}

// Build replaces the index contents with records.
func (k *KeyIndex) Build(records []catalog.Record) {
	m := indexBySKU(records)

	k.mu.Lock()
	k.bySKU = m
	k.mu.Unlock()
}

// Upsert indexes one record; a record without SKU is ignored.
func (k *KeyIndex) Upsert(record catalog.Record) {
	if !record.HasSKU() {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bySKU[record.SKU] = record
}

// Lookup returns the record indexed under sku.
func (k *KeyIndex) Lookup(sku string) (catalog.Record, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	r, ok := k.bySKU[sku]
	return r, ok
}

// Len returns the number of indexed SKUs.
func (k *KeyIndex) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.bySKU)
}
