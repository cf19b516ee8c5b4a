package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// rdsTokenLifetime is the validity of an RDS IAM authentication token.
const rdsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider acquires IAM authentication tokens for RDS through the
// default AWS credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
	now      func() time.Time
}

// NewAWSIAMTokenProvider creates a token provider for AWS RDS IAM authentication.
// endpoint is host:port of the RDS instance, username the IAM-enabled database user.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port): %w", gioimport.ErrInvalidConfig)
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires region (use --aws-region or $AWS_REGION): %w", gioimport.ErrInvalidConfig)
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires database username: %w", gioimport.ErrInvalidConfig)
	}

	return &AWSIAMTokenProvider{
		endpoint: endpoint,
		region:   region,
		username: username,
		now:      time.Now,
	}, nil
}

// GetToken builds a signed RDS auth token.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, p.now().Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}
