package awscfg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/workstation-tools/internal/config"
)

// Load resolves an aws.Config for one tool. Static keys win over a named
// shared-config profile; with neither, the default chain applies.
func Load(ctx context.Context, a config.AWS) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, Options(a)...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// Options builds the LoadDefaultConfig options for a.
func Options(a config.AWS) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(a.Region),
	}
	switch {
	case a.AccessKeyID != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretKey, ""),
		))
	case a.Profile != "":
		opts = append(opts, awsconfig.WithSharedConfigProfile(a.Profile))
	}
	return opts
}
