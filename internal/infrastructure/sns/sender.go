package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/workstation-tools/internal/config"
	"github.com/workstation-tools/internal/infrastructure/awscfg"
)

// Publisher sends short event messages to an SNS topic.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// PublishAPI is the subset of *sns.Client the publisher uses.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   PublishAPI
	topicARN string
}

// NewPublisher returns a Publisher for topicARN. An empty ARN yields a no-op publisher.
func NewPublisher(ctx context.Context, a config.AWS, topicARN string) (Publisher, error) {
	if topicARN == "" {
		return Nop{}, nil
	}
	awsCfg, err := awscfg.Load(ctx, a)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithClient(sns.NewFromConfig(awsCfg), topicARN), nil
}

func NewPublisherWithClient(client PublishAPI, topicARN string) Publisher {
	return &publisher{client: client, topicARN: topicARN}
}

func (p *publisher) Publish(ctx context.Context, subject, message string) error {
	in := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(message),
	}
	if subject != "" {
		in.Subject = aws.String(subject)
	}
	if _, err := p.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// Nop discards every message.
type Nop struct{}

func (Nop) Publish(context.Context, string, string) error { return nil }
