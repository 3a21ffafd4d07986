package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/textract"
)

// Config holds AWS client configuration
type Config struct {
	// Region is the AWS region for all three services
	Region string

	// Endpoint overrides the service endpoint (LocalStack, VPC endpoints). Optional.
	Endpoint string
}

// Clients bundles the SDK clients shared by every invocation.
// SDK clients are safe for concurrent use.
type Clients struct {
	Textract   *textract.Client
	Comprehend *comprehend.Client
	DynamoDB   *dynamodb.Client
}

// NewClients loads the default credential chain and builds the service clients
func NewClients(ctx context.Context, cfg Config) (*Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		endpoint = aws.String(cfg.Endpoint)
	}

	return &Clients{
		Textract: textract.NewFromConfig(awsCfg, func(o *textract.Options) {
			o.BaseEndpoint = endpoint
		}),
		Comprehend: comprehend.NewFromConfig(awsCfg, func(o *comprehend.Options) {
			o.BaseEndpoint = endpoint
		}),
		DynamoDB: dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = endpoint
		}),
	}, nil
}
