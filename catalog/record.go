// Package catalog holds the product record snapshot consumed by the engine and the
// backing-store contract it reads from.
//
// The store itself is an external collaborator. Two implementations live here:
//   - MemoryStore: seeded in-process dataset, used for local runs and load tests
//   - DynamoStore: products table in DynamoDB
//
// BreakerStore wraps either one so a failing backend trips fast instead of piling up requests.
package catalog

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Record is a point-in-time copy of a product. The engine never observes later mutation of
// the source row until it is re-synced.
type Record struct {
	Key        int64    `json:"id" dynamodbav:"id"`
	Name       string   `json:"name" dynamodbav:"name"`
	Brand      string   `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	SKU        string   `json:"sku,omitempty" dynamodbav:"sku,omitempty"`
	Category   string   `json:"category,omitempty" dynamodbav:"category,omitempty"`
	PriceCents int64    `json:"price_cents" dynamodbav:"price_cents"` // exact price, e.g. 15025 = $150.25
	Rating     *float64 `json:"rating,omitempty" dynamodbav:"rating,omitempty"`
	Stock      int      `json:"stock" dynamodbav:"stock"`
}

// RatingOrZero returns the rating, treating an absent rating as 0.
func (r Record) RatingOrZero() float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

// HasSKU reports whether the record carries a SKU.
func (r Record) HasSKU() bool {
	return r.SKU != ""
}

// Store is the read side of the durable product store.
type Store interface {
	// ListAll returns every record in a stable order.
	ListAll(ctx context.Context) ([]Record, error)
	// FindByKey returns the record for key, or false when it does not exist.
	FindByKey(ctx context.Context, key int64) (Record, bool, error)
}

// Writer is implemented by stores that accept mutations pushed from catalog events.
type Writer interface {
	Upsert(ctx context.Context, record Record) error
	Delete(ctx context.Context, key int64) error
}

// ErrStoreUnavailable is returned when the backing store refuses requests (open breaker).
var ErrStoreUnavailable = errors.New("catalog store unavailable")

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// GenerateSKU derives a SKU from a product name: the first six uppercase alphanumerics of
// the name, a dash, then seq. "Wireless Mouse", 42 -> "WIRELE-42".
func GenerateSKU(name string, seq int64) string {
	base := nonAlnum.ReplaceAllString(strings.ToUpper(name), "")
	if len(base) > 6 {
		base = base[:6]
	}
	return base + "-" + strconv.FormatInt(seq, 10)
}

// FilterByCategory returns the records in category, preserving order. An empty category
// returns records unchanged.
func FilterByCategory(records []Record, category string) []Record {
	if category == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}
