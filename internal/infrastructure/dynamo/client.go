package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/workstation-tools/internal/config"
	"github.com/workstation-tools/internal/infrastructure/awscfg"
)

// NewClient creates a DynamoDB client. When a.EndpointURL is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, a config.AWS) (*dynamodb.Client, error) {
	awsCfg, err := awscfg.Load(ctx, a)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*dynamodb.Options){}
	if a.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(a.EndpointURL)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
