package events

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher sends catalog events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// SNSAPI is the part of *sns.Client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes events to a topic. Subscribed queues receive the SNS envelope,
// which Decode unwraps.
type SNSPublisher struct {
	client   SNSAPI
	topicARN string // e.g. arn:aws:sns:us-east-1:123456789012:catalog-events
}

func NewSNSPublisher(client SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// Publish sends event with its kind as a message attribute for subscription filters.
func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Kind)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s to sns: %w", event.ID, err)
	}
	return nil
}
