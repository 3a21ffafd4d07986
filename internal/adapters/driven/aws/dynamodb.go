package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingRepository = (*DynamoFindingStore)(nil)

// Attribute names of a finding item
const (
	attrFileName      = "file_name"
	attrPIIConfidence = "pii_confidence"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// findingItem is the stored item shape. The partition key is file_name.
type findingItem struct {
	FileName      string `dynamodbav:"file_name"`
	PIIConfidence string `dynamodbav:"pii_confidence"`
	Bucket        string `dynamodbav:"bucket,omitempty"`
	ProcessedAt   string `dynamodbav:"processed_at,omitempty"`
}

// DynamoFindingStore implements driven.FindingRepository on a DynamoDB table
type DynamoFindingStore struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoFindingStore creates a store writing to table
func NewDynamoFindingStore(client DynamoDBAPI, table string) *DynamoFindingStore {
	return &DynamoFindingStore{client: client, table: table}
}

// Put writes the record, replacing any earlier record for the same key
func (s *DynamoFindingStore) Put(ctx context.Context, record *domain.FindingRecord) error {
	field, err := record.EncodeFindings()
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: err}
	}

	item, err := attributevalue.MarshalMap(findingItem{
		FileName:      record.DocumentKey,
		PIIConfidence: field,
		Bucket:        record.Bucket,
		ProcessedAt:   record.ProcessedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: fmt.Errorf("failed to marshal item: %w", err)}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: err}
	}
	return nil
}

// Get retrieves the record for documentKey
func (s *DynamoFindingStore) Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrFileName: &types.AttributeValueMemberS{Value: documentKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}

	var item findingItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal finding: %w", err)
	}

	findings, err := domain.DecodeFindings(item.PIIConfidence)
	if err != nil {
		return nil, err
	}

	record := &domain.FindingRecord{
		DocumentKey: item.FileName,
		Bucket:      item.Bucket,
		Findings:    findings,
	}
	if item.ProcessedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, item.ProcessedAt); err == nil {
			record.ProcessedAt = ts
		}
	}
	return record, nil
}

// Ping checks that the table exists and is reachable
func (s *DynamoFindingStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("%w: dynamodb table %s: %v", domain.ErrServiceUnavailable, s.table, err)
	}
	return nil
}
