// Command worker persists catalog events from an SQS queue into the DynamoDB products
// table. API instances subscribe their own queues to the same SNS topic and only update
// their indexes; this worker is the single writer.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"shopwave-catalog/catalog"
	appconfig "shopwave-catalog/config"
	"shopwave-catalog/events"
	"shopwave-catalog/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load environment variables
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Store.Backend != "dynamodb" || cfg.Events.Source != "sqs" {
		log.Fatal("worker requires STORE_BACKEND=dynamodb and EVENTS_SOURCE=sqs")
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize AWS clients
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal("load aws config", zap.Error(err))
	}
	store := catalog.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Store.DynamoDBTable)
	applier := events.NewApplier(store, nil, logger.Named("events"), nil)

	consumer := events.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.Events.SQSQueueURL,
		cfg.Events.WorkerConcurrency, applier, logger)

	logger.Info("Worker started",
		zap.String("queue", cfg.Events.SQSQueueURL),
		zap.String("table", cfg.Store.DynamoDBTable),
		zap.Int("concurrency", cfg.Events.WorkerConcurrency))

	if err := consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("Worker stopped")
}
