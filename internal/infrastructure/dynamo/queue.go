package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/workstation-tools/internal/domain"
)

// API is the subset of *dynamodb.Client the queue repo uses.
type API interface {
	TableCreator
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// QueueRepo provides typed DynamoDB operations for the download-queue table.
type QueueRepo struct {
	client    API
	tableName string
}

func NewQueueRepo(client API, tableName string) *QueueRepo {
	return &QueueRepo{client: client, tableName: tableName}
}

// Migrate creates the table if needed.
func (r *QueueRepo) Migrate(ctx context.Context) (bool, error) {
	return Bootstrap(ctx, r.client, r.tableName)
}

func (r *QueueRepo) Put(ctx context.Context, item *domain.DownloadItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal download item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

// Scan returns every item in the table, following pagination.
func (r *QueueRepo) Scan(ctx context.Context) ([]domain.DownloadItem, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
}

// ScanByURL returns every item whose url equals u.
func (r *QueueRepo) ScanByURL(ctx context.Context, u string) ([]domain.DownloadItem, error) {
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String("#u = :u"),
		ExpressionAttributeNames:  map[string]string{"#u": fieldURL},
		ExpressionAttributeValues: map[string]types.AttributeValue{":u": &types.AttributeValueMemberS{Value: u}},
	})
}

func (r *QueueRepo) scan(ctx context.Context, in *dynamodb.ScanInput) ([]domain.DownloadItem, error) {
	var items []domain.DownloadItem
	p := dynamodb.NewScanPaginator(r.client, in)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.tableName, err)
		}
		var page []domain.DownloadItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal download items: %w", err)
		}
		items = append(items, page...)
	}
	return items, nil
}

// GetByID queries the partition for id and returns its first item.
func (r *QueueRepo) GetByID(ctx context.Context, id string) (*domain.DownloadItem, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#id = :id"),
		ExpressionAttributeNames:  map[string]string{"#id": fieldID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: id}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no item found with id %s: %w", id, domain.ErrNotFound)
	}
	var item domain.DownloadItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *QueueRepo) Delete(ctx context.Context, id, creationTime string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(id, creationTime),
	})
	return err
}

// SetError records a failed attempt on the item. The item must still exist.
func (r *QueueRepo) SetError(ctx context.Context, id, creationTime, msg, attemptedAt string) error {
	set := newAssignments().set(fieldError, msg).set(fieldLastAttempt, attemptedAt)
	expr, err := set.expression()
	if err != nil {
		return err
	}
	set.names["#id"] = fieldID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       itemKey(id, creationTime),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  set.names,
		ExpressionAttributeValues: set.values,
		ConditionExpression:       aws.String("attribute_exists(#id)"),
	})
	return err
}
