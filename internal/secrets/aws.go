package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadAWSConfig loads the default AWS credential chain (environment variables,
// shared config files, container and instance roles) for region.
// maxAttempts caps the SDK retryer; timeout bounds each HTTP call.
func LoadAWSConfig(ctx context.Context, region string, maxAttempts int, timeout time.Duration) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, fmt.Errorf("AWS region is required (set AWS_REGION)")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if maxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(maxAttempts))
	}
	if timeout > 0 {
		opts = append(opts, config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewSSMClient creates a Parameter Store client from an AWS config.
func NewSSMClient(cfg aws.Config) *ssm.Client {
	return ssm.NewFromConfig(cfg)
}
