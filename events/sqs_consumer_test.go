package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopwave-catalog/catalog"
)

// fakeQueue hands out one batch per receive and records deleted receipt handles.
type fakeQueue struct {
	mu       sync.Mutex
	batches  [][]types.Message
	deleted  []string
	failOnce bool
	receives int
}

func (q *fakeQueue) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	q.receives++
	if q.failOnce {
		q.failOnce = false
		q.mu.Unlock()
		return nil, errors.New("throttled")
	}
	if len(q.batches) > 0 {
		batch := q.batches[0]
		q.batches = q.batches[1:]
		q.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: batch}, nil
	}
	q.mu.Unlock()

	// empty long poll
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return &sqs.ReceiveMessageOutput{}, nil
	}
}

func (q *fakeQueue) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *fakeQueue) deletedHandles() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.deleted...)
}

func message(t *testing.T, handle string, e Event) types.Message {
	t.Helper()
	body, err := Encode(e)
	require.NoError(t, err)
	return types.Message{
		MessageId:     aws.String("m-" + handle),
		ReceiptHandle: aws.String(handle),
		Body:          aws.String(string(body)),
	}
}

func runConsumer(t *testing.T, c *SQSConsumer) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
		}
	}
}

func TestSQSConsumerDeletesHandledAndMalformed(t *testing.T) {
	rec := catalog.Record{Key: 1, Name: "Lamp"}
	q := &fakeQueue{batches: [][]types.Message{{
		message(t, "ok", NewEvent(KindCreated, 1, &rec)),
		{MessageId: aws.String("m-bad"), ReceiptHandle: aws.String("bad"), Body: aws.String("not json")},
		message(t, "fails", NewEvent(KindDeleted, 2, nil)),
	}}}

	var handled atomic.Int32
	handler := HandlerFunc(func(_ context.Context, e Event) error {
		handled.Add(1)
		if e.Key == 2 {
			return errors.New("store unavailable")
		}
		return nil
	})

	stop := runConsumer(t, NewSQSConsumer(q, "queue", 2, handler, zap.NewNop()))
	assert.Eventually(t, func() bool { return handled.Load() == 2 && len(q.deletedHandles()) == 2 },
		time.Second, 5*time.Millisecond)
	stop()

	assert.ElementsMatch(t, []string{"ok", "bad"}, q.deletedHandles(), "failed message stays for redelivery")
}

func TestSQSConsumerRetriesAfterReceiveError(t *testing.T) {
	q := &fakeQueue{failOnce: true, batches: [][]types.Message{{
		message(t, "later", NewEvent(KindDeleted, 3, nil)),
	}}}
	c := NewSQSConsumer(q, "queue", 1, HandlerFunc(func(context.Context, Event) error { return nil }), zap.NewNop())
	c.retryDelay = time.Millisecond

	stop := runConsumer(t, c)
	assert.Eventually(t, func() bool { return len(q.deletedHandles()) == 1 }, time.Second, 5*time.Millisecond)
	stop()
}

func TestSQSConsumerBoundsConcurrency(t *testing.T) {
	var batch []types.Message
	for i := 0; i < 10; i++ {
		batch = append(batch, message(t, string(rune('a'+i)), NewEvent(KindDeleted, int64(i), nil)))
	}
	q := &fakeQueue{batches: [][]types.Message{batch}}

	var inFlight, peak atomic.Int32
	handler := HandlerFunc(func(context.Context, Event) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	stop := runConsumer(t, NewSQSConsumer(q, "queue", 3, handler, zap.NewNop()))
	assert.Eventually(t, func() bool { return len(q.deletedHandles()) == 10 }, 2*time.Second, 5*time.Millisecond)
	stop()

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestSQSConsumerFeedsApplier(t *testing.T) {
	store := catalog.NewMemoryStore()
	sink := new(mockSink)
	rec := catalog.Record{Key: 8, Name: "Notebook", SKU: "NOTEBO-8"}
	sink.On("OnCreate", rec).Once()

	q := &fakeQueue{batches: [][]types.Message{{message(t, "n", NewEvent(KindCreated, 8, &rec))}}}
	stop := runConsumer(t, NewSQSConsumer(q, "queue", 1, NewApplier(store, sink, zap.NewNop(), nil), zap.NewNop()))
	assert.Eventually(t, func() bool { return len(q.deletedHandles()) == 1 }, time.Second, 5*time.Millisecond)
	stop()

	_, ok, err := store.FindByKey(context.Background(), 8)
	require.NoError(t, err)
	assert.True(t, ok)
	sink.AssertExpectations(t)
}
