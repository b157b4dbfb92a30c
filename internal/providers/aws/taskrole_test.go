package aws

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	sluiceconfig "github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/provider"
)

func TestTaskRole_Name(t *testing.T) {
	s := NewTaskRole()
	if got := s.Name(); got != "task-role" {
		t.Errorf("Name() = %q, want %q", got, "task-role")
	}
	if s.Description() == "" {
		t.Error("Description() is empty")
	}
}

func TestTaskRole_Load(t *testing.T) {
	cfg := sluiceconfig.Default()
	cfg.TaskRole.Region = "eu-central-1"

	var opts config.LoadOptions
	loader := fakeLoader(&opts)
	s := &TaskRole{loadConfig: func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		awsCfg, err := loader(ctx, optFns...)
		awsCfg.Credentials = staticCredentials("AKIDTASKROLE")
		return awsCfg, err
	}}

	sess, err := s.Load(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer sess.Close()

	if opts.Region != "eu-central-1" {
		t.Errorf("loaded with region %q, want eu-central-1", opts.Region)
	}
	if sess.Region != "eu-central-1" {
		t.Errorf("session region = %q", sess.Region)
	}
	if sess.Source != "task-role" {
		t.Errorf("session source = %q", sess.Source)
	}

	creds, err := sess.Config.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKIDTASKROLE" {
		t.Errorf("AccessKeyID = %q", creds.AccessKeyID)
	}
}

func TestTaskRole_Load_NoCredentials(t *testing.T) {
	s := &TaskRole{loadConfig: func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{
			Region: "us-east-1",
			Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{}, errors.New("failed to refresh cached credentials, no EC2 IMDS role found")
			}),
		}, nil
	}}

	_, err := s.Load(context.Background(), sluiceconfig.Default())

	var credErr *provider.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %T: %v", err, err)
	}
	if credErr.Source != "task-role" {
		t.Errorf("Source = %q", credErr.Source)
	}
	if !strings.Contains(credErr.Hint, "taskRoleArn") {
		t.Errorf("Hint = %q, want mention of taskRoleArn", credErr.Hint)
	}
}

func TestTaskRole_Load_ConfigError(t *testing.T) {
	s := &TaskRole{loadConfig: func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("failed to get shared config profile, missing")
	}}

	_, err := s.Load(context.Background(), sluiceconfig.Default())
	if err == nil || !strings.Contains(err.Error(), "loading AWS config") {
		t.Fatalf("Load() error = %v", err)
	}
}
