package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSAPI is the part of *sqs.Client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConsumer long-polls a queue and hands each message to a Handler on its own goroutine.
// gate bounds how many messages are in flight at once.
type SQSConsumer struct {
	client     SQSAPI
	queueURL   string
	handler    Handler
	logger     *zap.Logger
	gate       chan struct{}
	retryDelay time.Duration
	wg         sync.WaitGroup
}

// NewSQSConsumer creates a consumer. concurrency <= 0 selects 10.
func NewSQSConsumer(client SQSAPI, queueURL string, concurrency int, handler Handler, logger *zap.Logger) *SQSConsumer {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &SQSConsumer{
		client:     client,
		queueURL:   queueURL,
		handler:    handler,
		logger:     logger,
		gate:       make(chan struct{}, concurrency),
		retryDelay: time.Second,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight messages to finish.
//
// Malformed messages are deleted. Messages whose handler fails stay on the queue and come
// back after the visibility timeout.
func (c *SQSConsumer) Run(ctx context.Context) error {
	c.logger.Info("sqs consumer started", zap.String("queue", c.queueURL), zap.Int("concurrency", cap(c.gate)))
	defer c.wg.Wait()

	for {
		if ctx.Err() != nil {
			return nil
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   30,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("receive failed", zap.Error(err))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, m := range out.Messages {
			select {
			case c.gate <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			c.wg.Add(1)
			go func(msg types.Message) {
				defer c.wg.Done()
				defer func() { <-c.gate }()
				c.process(ctx, msg)
			}(m)
		}
	}
}

func (c *SQSConsumer) process(ctx context.Context, msg types.Message) {
	logger := c.logger.With(zap.String("message_id", aws.ToString(msg.MessageId)))

	event, err := Decode([]byte(aws.ToString(msg.Body)))
	if err != nil {
		logger.Warn("bad message", zap.Error(err))
		c.delete(ctx, msg, logger)
		return
	}

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		if errors.Is(err, ErrMalformedEvent) {
			logger.Warn("handler rejected message", zap.Error(err))
			c.delete(ctx, msg, logger)
			return
		}
		logger.Error("handle failed; leaving message for redelivery", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	c.delete(ctx, msg, logger)
}

// delete outlives cancellation so a processed message is not redelivered on shutdown.
func (c *SQSConsumer) delete(ctx context.Context, msg types.Message, logger *zap.Logger) {
	_, err := c.client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		logger.Warn("delete failed", zap.Error(err))
	}
}
