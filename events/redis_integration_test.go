package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Runs against a live Redis at REDIS_ADDR (default localhost:6379); skipped when unreachable.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	received := make(chan Event, 1)
	src := NewRedisSource(client, "catalog-events-test", HandlerFunc(func(_ context.Context, e Event) error {
		select {
		case received <- e:
		default:
		}
		return nil
	}), zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	event := NewEvent(KindDeleted, 21, nil)
	pub := NewRedisPublisher(client, "catalog-events-test")
	// Publish until the subscriber is attached.
	assert.Eventually(t, func() bool {
		if err := pub.Publish(ctx, event); err != nil {
			return false
		}
		select {
		case e := <-received:
			return e.ID == event.ID
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
