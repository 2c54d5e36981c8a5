package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// rdsTokenLifetime is how long RDS accepts a generated auth token.
const rdsTokenLifetime = 15 * time.Minute

// buildAuthToken is a seam for tests.
var buildAuthToken = auth.BuildAuthToken

// AWSIAMTokenProvider generates RDS IAM authentication tokens.
type AWSIAMTokenProvider struct {
	endpoint    string // host:port
	region      string
	credentials aws.CredentialsProvider
}

// NewAWSIAMTokenProvider creates a token provider for RDS IAM authentication.
// endpoint is the RDS endpoint in host:port format (e.g., "mydb.cluster.region.rds.amazonaws.com:5432").
// credentials usually come from the same aws.Config used for Parameter Store.
func NewAWSIAMTokenProvider(endpoint, region string, credentials aws.CredentialsProvider) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port)")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires region (set AWS_REGION)")
	}
	if credentials == nil {
		return nil, fmt.Errorf("AWS IAM auth requires AWS credentials")
	}

	return &AWSIAMTokenProvider{
		endpoint:    endpoint,
		region:      region,
		credentials: credentials,
	}, nil
}

// GetToken builds a signed auth token for username.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context, username string) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, fmt.Errorf("AWS IAM auth requires database username")
	}

	token, err := buildAuthToken(ctx, p.endpoint, p.region, username, p.credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}

	return token, time.Now().Add(rdsTokenLifetime), nil
}

// String returns a human-readable representation of the provider.
func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s)", p.endpoint, p.region)
}
