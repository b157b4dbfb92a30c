package aws

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/processcreds"
	sluiceconfig "github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/provider"
	"github.com/majorcontext/sluice/internal/secrets"
)

const (
	helperInstallHint = "Install the IAM Roles Anywhere credential helper and put it on PATH, or set roles_anywhere.helper_path:\n" +
		"  https://docs.aws.amazon.com/rolesanywhere/latest/userguide/credential-helper.html"
	configHint = "Set the roles_anywhere section in ~/.sluice/config.yaml or the SLUICE_ROLES_ANYWHERE_* environment variables.\n" +
		"Example: arn:aws:rolesanywhere:sa-east-1:123456789012:trust-anchor/TA_ID"
)

// RolesAnywhere obtains credentials from the IAM Roles Anywhere signing
// helper using an X.509 certificate and private key.
type RolesAnywhere struct {
	loadConfig configLoader
	lookPath   func(file string) (string, error)
}

// NewRolesAnywhere creates the roles-anywhere source.
func NewRolesAnywhere() *RolesAnywhere {
	return &RolesAnywhere{
		loadConfig: config.LoadDefaultConfig,
		lookPath:   exec.LookPath,
	}
}

// Name returns "roles-anywhere".
func (s *RolesAnywhere) Name() string {
	return "roles-anywhere"
}

// Description returns a one-line summary.
func (s *RolesAnywhere) Description() string {
	return "IAM Roles Anywhere with an X.509 certificate via aws_signing_helper"
}

// Load validates the Roles Anywhere configuration, stages certificate
// material, and wires the helper in as a credential_process provider.
func (s *RolesAnywhere) Load(ctx context.Context, cfg *sluiceconfig.Config) (_ *provider.Session, err error) {
	ra := cfg.RolesAnywhere
	if err := ra.Validate(); err != nil {
		return nil, s.fail(err, configHint)
	}

	helper, err := s.lookPath(ra.Helper())
	if err != nil {
		return nil, s.fail(fmt.Errorf("signing helper %q not found: %w", ra.Helper(), err), helperInstallHint)
	}

	// Created by stage only when a secret reference needs somewhere to land.
	var dir string
	cleanup := func() error {
		if dir == "" {
			return nil
		}
		return os.RemoveAll(dir)
	}
	defer func() {
		if err != nil {
			_ = cleanup()
		}
	}()

	certPath, err := s.stage(ctx, ra.Certificate, &dir, "certificate.pem")
	if err != nil {
		return nil, err
	}
	keyPath, err := s.stage(ctx, ra.PrivateKey, &dir, "privkey.pem")
	if err != nil {
		return nil, err
	}

	args := ra.HelperArgs(certPath, keyPath)
	log.Debug("configuring signing helper", "helper", helper, "args", strings.Join(args, " "))

	process := processcreds.NewProviderCommand(processcreds.NewCommandBuilderFunc(
		func(ctx context.Context) (*exec.Cmd, error) {
			return exec.CommandContext(ctx, helper, args...), nil
		},
	))

	awsCfg, err := s.loadConfig(ctx,
		config.WithRegion(ra.Region),
		config.WithCredentialsProvider(aws.NewCredentialsCache(process)),
	)
	if err != nil {
		return nil, s.fail(fmt.Errorf("loading AWS config: %w", err), "")
	}

	if err = retrieve(ctx, awsCfg); err != nil {
		return nil, s.fail(err, retrieveHint(helper, args))
	}

	return provider.NewSession(s.Name(), awsCfg, cleanup), nil
}

// stage returns a path the helper can read for ref. Secret references are
// resolved into *dir, which is created on first use.
func (s *RolesAnywhere) stage(ctx context.Context, ref string, dir *string, name string) (string, error) {
	if secrets.IsReference(ref) {
		if *dir == "" {
			d, err := os.MkdirTemp("", "sluice-roles-anywhere-")
			if err != nil {
				return "", fmt.Errorf("creating temp dir: %w", err)
			}
			*dir = d
		}
		path, err := secrets.Stage(ctx, ref, *dir, name)
		if err != nil {
			return "", s.fail(fmt.Errorf("resolving %s: %w", name, err), "")
		}
		return path, nil
	}

	if _, err := os.Stat(ref); err != nil {
		return "", s.fail(err, "Place the PEM file at this path or point roles_anywhere.certificate / roles_anywhere.private_key at it.")
	}
	return ref, nil
}

func (s *RolesAnywhere) fail(err error, hint string) error {
	return &provider.CredentialError{Source: s.Name(), Cause: err, Hint: hint}
}

// retrieveHint shows the exact helper invocation so it can be rerun by hand.
func retrieveHint(helper string, args []string) string {
	return "The signing helper did not return credentials. Rerun it by hand to see its output:\n" +
		"  " + helper + " " + strings.Join(args, " ") + "\n" +
		"Check that the certificate chains to the trust anchor and the profile allows the role."
}
