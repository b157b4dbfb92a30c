package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentityGetter interface for the STS GetCallerIdentity operation
// (enables testing).
type CallerIdentityGetter interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity is the principal a set of credentials resolves to.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// NewIdentityClient returns an STS client for cfg.
func NewIdentityClient(cfg aws.Config) CallerIdentityGetter {
	return sts.NewFromConfig(cfg)
}

// CallerIdentity asks STS who the client's credentials belong to.
func CallerIdentity(ctx context.Context, client CallerIdentityGetter) (*Identity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
