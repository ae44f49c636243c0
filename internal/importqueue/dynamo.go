package importqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrDuplicateID is returned when an entry with the same ID already exists.
var ErrDuplicateID = errors.New("import id already exists")

// DynamoAPI is the subset of the DynamoDB client a DynamoQueue uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// NewDynamoClient builds a DynamoDB client from the default AWS config chain.
func NewDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// DynamoQueue stores one item per entry in a DynamoDB table keyed by "id".
// Writes are conditional, so an ID collision is reported instead of silently
// replacing the earlier entry.
type DynamoQueue struct {
	client DynamoAPI
	table  string
}

// NewDynamoQueue creates a queue over the given table.
func NewDynamoQueue(client DynamoAPI, table string) *DynamoQueue {
	return &DynamoQueue{client: client, table: table}
}

// Configured reports whether a table name was given.
func (q *DynamoQueue) Configured() bool {
	return q.table != ""
}

// dynamoItem is the stored shape of an Entry. JSON payloads are kept as
// strings so they stay readable in the console.
type dynamoItem struct {
	ID           string `dynamodbav:"id"`
	Status       string `dynamodbav:"status"`
	CreatedAt    string `dynamodbav:"createdAt"`
	SourceURL    string `dynamodbav:"sourceUrl,omitempty"`
	ListingDraft string `dynamodbav:"listingDraft"`
	Confidence   string `dynamodbav:"confidence,omitempty"`
}

func toItem(e Entry) dynamoItem {
	return dynamoItem{
		ID:           e.ID,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339Nano),
		SourceURL:    e.SourceURL,
		ListingDraft: string(e.ListingDraft),
		Confidence:   string(e.Confidence),
	}
}

func (it dynamoItem) entry() Entry {
	e := Entry{
		ID:           it.ID,
		Status:       it.Status,
		SourceURL:    it.SourceURL,
		ListingDraft: json.RawMessage(it.ListingDraft),
	}
	if it.Confidence != "" {
		e.Confidence = json.RawMessage(it.Confidence)
	}
	if t, err := time.Parse(time.RFC3339Nano, it.CreatedAt); err == nil {
		e.CreatedAt = t
	}
	return e
}

func (q *DynamoQueue) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Append puts e unless an item with the same ID exists.
func (q *DynamoQueue) Append(ctx context.Context, e Entry) error {
	if !q.Configured() {
		return ErrNotConfigured
	}

	av, err := attributevalue.MarshalMap(toItem(e))
	if err != nil {
		return fmt.Errorf("marshalling import: %w", err)
	}

	_, err = q.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(q.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		return fmt.Errorf("putting import: %w", err)
	}
	return nil
}

// List scans the whole table and returns entries oldest first.
func (q *DynamoQueue) List(ctx context.Context) ([]Entry, error) {
	if !q.Configured() {
		return nil, ErrNotConfigured
	}

	entries := make([]Entry, 0)
	var start map[string]types.AttributeValue
	for {
		out, err := q.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(q.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning imports: %w", err)
		}

		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshalling imports: %w", err)
		}
		for _, it := range items {
			entries = append(entries, it.entry())
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Get fetches the entry with the given ID.
func (q *DynamoQueue) Get(ctx context.Context, id string) (*Entry, error) {
	if !q.Configured() {
		return nil, ErrNotConfigured
	}

	out, err := q.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(q.table),
		Key:       q.key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("getting import %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var it dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshalling import %s: %w", id, err)
	}
	e := it.entry()
	return &e, nil
}

// SetStatus updates the status of an existing entry.
func (q *DynamoQueue) SetStatus(ctx context.Context, id, status string) error {
	if !q.Configured() {
		return ErrNotConfigured
	}

	_, err := q.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(q.table),
		Key:                      q.key(id),
		UpdateExpression:         aws.String("SET #status = :status"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("updating import %s: %w", id, err)
	}
	return nil
}

// Prune deletes matching entries one item at a time.
func (q *DynamoQueue) Prune(ctx context.Context, before time.Time, includePending bool) (int, error) {
	entries, err := q.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !prunable(e, before, includePending) {
			continue
		}
		if _, err := q.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(q.table),
			Key:       q.key(e.ID),
		}); err != nil {
			return removed, fmt.Errorf("deleting import %s: %w", e.ID, err)
		}
		removed++
	}
	return removed, nil
}
