package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopwave-catalog/catalog"
	"shopwave-catalog/observability"
)

// Handler consumes decoded events. A returned error leaves the event for redelivery.
type Handler interface {
	HandleEvent(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Sink receives mutation notifications. *engine.Engine satisfies it.
type Sink interface {
	OnCreate(record catalog.Record)
	OnUpdate(record catalog.Record)
	OnDelete(key int64)
}

// Applier writes events to the local store, when it accepts writes, and then notifies the
// sink. With a read-only store the owning service has already persisted the change.
type Applier struct {
	writer  catalog.Writer
	sink    Sink
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewApplier creates an applier. writer, sink and metrics may be nil; the event worker
// runs with a writer and no sink.
func NewApplier(writer catalog.Writer, sink Sink, logger *zap.Logger, metrics *observability.Collector) *Applier {
	return &Applier{writer: writer, sink: sink, logger: logger, metrics: metrics}
}

// HandleEvent applies one event.
func (a *Applier) HandleEvent(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		a.metrics.ObserveEvent(string(event.Kind), "ignored")
		a.logger.Warn("dropping invalid event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}

	if err := a.write(ctx, event); err != nil {
		a.metrics.ObserveEvent(string(event.Kind), "failed")
		return fmt.Errorf("apply %s %s: %w", event.Kind, event.ID, err)
	}

	a.notify(event)
	a.metrics.ObserveEvent(string(event.Kind), "applied")
	a.logger.Debug("applied catalog event",
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.Int64("key", event.Key))
	return nil
}

func (a *Applier) notify(event Event) {
	if a.sink == nil {
		return
	}
	switch event.Kind {
	case KindCreated:
		a.sink.OnCreate(*event.Record)
	case KindUpdated:
		a.sink.OnUpdate(*event.Record)
	case KindDeleted:
		a.sink.OnDelete(event.Key)
	}
}

func (a *Applier) write(ctx context.Context, event Event) error {
	if a.writer == nil {
		return nil
	}
	if event.Kind == KindDeleted {
		return a.writer.Delete(ctx, event.Key)
	}
	return a.writer.Upsert(ctx, *event.Record)
}
