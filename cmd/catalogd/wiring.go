package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopwave-catalog/catalog"
	"shopwave-catalog/config"
	"shopwave-catalog/events"
)

// stores is the result of buildStore. writer is nil when another service owns writes.
type stores struct {
	read    catalog.Store
	writer  catalog.Writer
	breaker *catalog.BreakerStore
}

// awsClients loads the default credential chain (env, shared config, EC2/Fargate role) once.
type awsClients struct {
	region string
	cfg    *aws.Config
}

func (a *awsClients) config(ctx context.Context) (aws.Config, error) {
	if a.cfg != nil {
		return *a.cfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(a.region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	a.cfg = &cfg
	return cfg, nil
}

func buildStore(ctx context.Context, cfg *config.Config, clients *awsClients, logger *zap.Logger) (stores, error) {
	if cfg.Store.Backend == "memory" {
		mem := catalog.NewMemoryStore()
		mem.Seed(cfg.Store.SeedSize)
		logger.Info("seeded in-memory catalog", zap.Int("products", mem.Len()))
		return stores{read: mem, writer: mem}, nil
	}

	awsCfg, err := clients.config(ctx)
	if err != nil {
		return stores{}, err
	}
	dyn := catalog.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Store.DynamoDBTable)
	breaker := catalog.NewBreakerStore(dyn, catalog.DefaultBreakerConfig("catalog-dynamodb"), logger)
	return stores{read: breaker, breaker: breaker}, nil
}

// buildPublisher returns nil when no event sink is configured.
func buildPublisher(ctx context.Context, cfg *config.Config, clients *awsClients, rdb *redis.Client) (events.Publisher, error) {
	switch {
	case cfg.Events.SNSTopicARN != "":
		awsCfg, err := clients.config(ctx)
		if err != nil {
			return nil, err
		}
		return events.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.Events.SNSTopicARN), nil
	case rdb != nil:
		return events.NewRedisPublisher(rdb, cfg.Events.RedisChannel), nil
	}
	return nil, nil
}

// runner is an event source loop.
type runner interface {
	Run(ctx context.Context) error
}

func buildSource(ctx context.Context, cfg *config.Config, clients *awsClients, rdb *redis.Client, handler events.Handler, logger *zap.Logger) (runner, error) {
	switch cfg.Events.Source {
	case "sqs":
		awsCfg, err := clients.config(ctx)
		if err != nil {
			return nil, err
		}
		return events.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.Events.SQSQueueURL,
			cfg.Events.WorkerConcurrency, handler, logger), nil
	case "redis":
		return events.NewRedisSource(rdb, cfg.Events.RedisChannel, handler, logger), nil
	}
	return nil, nil
}
