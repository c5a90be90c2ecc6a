package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableCreator is the subset of the DynamoDB client Bootstrap needs.
type TableCreator interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates the download-queue table if it doesn't already exist.
// It reports whether the table was newly created.
func Bootstrap(ctx context.Context, client TableCreator, table string) (bool, error) {
	return createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(fieldID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldCreationTime), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(fieldCreationTime), KeyType: types.KeyTypeRange},
		},
	})
}

func createTable(ctx context.Context, client TableCreator, input *dynamodb.CreateTableInput) (bool, error) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if errors.As(err, &riue) {
			slog.Debug("table already exists", "table", *input.TableName)
			return false, nil
		}
		slog.Warn("could not create table", "table", *input.TableName, "err", err)
		return false, err
	}
	slog.Info("created table", "table", *input.TableName)
	return true, nil
}
