package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/majorcontext/sluice/internal/provider"
)

// configLoader matches config.LoadDefaultConfig (injectable for testing).
type configLoader func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error)

// Compile-time interface assertions.
var (
	_ provider.CredentialSource = (*TaskRole)(nil)
	_ provider.CredentialSource = (*RolesAnywhere)(nil)
)

func init() {
	provider.Register(NewTaskRole())
	provider.Register(NewRolesAnywhere())
	provider.RegisterAlias("ecs", "task-role")
	provider.RegisterAlias("iamra", "roles-anywhere")
}

var errNoProvider = errors.New("no credentials provider configured")

// retrieve fetches credentials once so Load fails early.
func retrieve(ctx context.Context, cfg aws.Config) error {
	if cfg.Credentials == nil {
		return errNoProvider
	}
	_, err := cfg.Credentials.Retrieve(ctx)
	return err
}
