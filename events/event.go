// Package events carries catalog mutation events between the services that own the product
// store and the in-process engine. Events arrive over SQS (optionally fanned out through SNS)
// or Redis pub/sub, and leave through an SNS topic or a Redis channel.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopwave-catalog/catalog"
)

// Kind names a catalog mutation.
type Kind string

const (
	KindCreated Kind = "product.created"
	KindUpdated Kind = "product.updated"
	KindDeleted Kind = "product.deleted"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCreated, KindUpdated, KindDeleted:
		return true
	}
	return false
}

// ErrMalformedEvent is returned for payloads that can never be applied. Consumers drop them
// instead of redelivering.
var ErrMalformedEvent = errors.New("malformed catalog event")

// Event is one product mutation. Record is required for creates and updates.
type Event struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Key        int64           `json:"key"`
	Record     *catalog.Record `json:"record,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent stamps a fresh id and timestamp.
func NewEvent(kind Kind, key int64, record *catalog.Record) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Key:        key,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks the event is applicable.
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, e.Kind)
	}
	if e.Kind == KindDeleted {
		return nil
	}
	if e.Record == nil {
		return fmt.Errorf("%w: %s without record", ErrMalformedEvent, e.Kind)
	}
	if e.Record.Key != e.Key {
		return fmt.Errorf("%w: key %d does not match record key %d", ErrMalformedEvent, e.Key, e.Record.Key)
	}
	return nil
}

// Encode serializes e as JSON.
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return body, nil
}

// snsEnvelope is the body SQS receives when subscribed to an SNS topic without raw delivery.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// Decode parses and validates an event. SNS notification envelopes are unwrapped.
func Decode(body []byte) (Event, error) {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "Notification" {
		body = []byte(env.Message)
	}

	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
