package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	sluiceconfig "github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/provider"
)

const taskRoleHint = "No credentials were found in the default chain.\n" +
	"On ECS, set taskRoleArn in the task definition and grant it bedrock:InvokeModel.\n" +
	"Elsewhere, set AWS_PROFILE, export AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, or run: aws sso login"

// TaskRole loads credentials from the SDK default chain.
type TaskRole struct {
	loadConfig configLoader
}

// NewTaskRole creates the task-role source.
func NewTaskRole() *TaskRole {
	return &TaskRole{loadConfig: config.LoadDefaultConfig}
}

// Name returns "task-role".
func (s *TaskRole) Name() string {
	return "task-role"
}

// Description returns a one-line summary.
func (s *TaskRole) Description() string {
	return "ECS task role or any credentials in the default AWS provider chain"
}

// Load resolves the default chain for the task-role region.
func (s *TaskRole) Load(ctx context.Context, cfg *sluiceconfig.Config) (*provider.Session, error) {
	region := cfg.TaskRole.Region
	log.Debug("loading default credential chain", "region", region)

	awsCfg, err := s.loadConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, &provider.CredentialError{
			Source: s.Name(),
			Cause:  fmt.Errorf("loading AWS config: %w", err),
			Hint:   "Check ~/.aws/config and AWS_PROFILE.",
		}
	}

	if err := retrieve(ctx, awsCfg); err != nil {
		return nil, &provider.CredentialError{
			Source: s.Name(),
			Cause:  err,
			Hint:   taskRoleHint,
		}
	}

	return provider.NewSession(s.Name(), awsCfg, nil), nil
}
