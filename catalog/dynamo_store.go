package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore keeps products in a DynamoDB table keyed by the numeric attribute "id".
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a store over table.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// ListAll scans the full table. Scan order is arbitrary, so results are ordered by key.
func (s *DynamoStore) ListAll(ctx context.Context) ([]Record, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var out []Record
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		batch := make([]Record, 0, len(page.Items))
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal %s items: %w", s.table, err)
		}
		out = append(out, batch...)
	}

	slices.SortFunc(out, func(a, b Record) int { return cmp.Compare(a.Key, b.Key) })
	return out, nil
}

// FindByKey fetches one product by id.
func (s *DynamoStore) FindByKey(ctx context.Context, key int64) (Record, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttr(key),
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("get item %d: %w", key, err)
	}
	if len(result.Item) == 0 {
		return Record{}, false, nil
	}

	var r Record
	if err := attributevalue.UnmarshalMap(result.Item, &r); err != nil {
		return Record{}, false, fmt.Errorf("unmarshal item %d: %w", key, err)
	}
	return r, true, nil
}

// Upsert writes record, replacing any existing item with the same id.
func (s *DynamoStore) Upsert(ctx context.Context, record Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal item %d: %w", record.Key, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item %d: %w", record.Key, err)
	}
	return nil
}

// Delete removes the item for key. Deleting a missing item is not an error.
func (s *DynamoStore) Delete(ctx context.Context, key int64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttr(key),
	})
	if err != nil {
		return fmt.Errorf("delete item %d: %w", key, err)
	}
	return nil
}

func keyAttr(key int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(key, 10)},
	}
}
