package secrets

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

const secretsManagerBackend = "AWS Secrets Manager"

// SecretValueGetter is the Secrets Manager operation the resolver needs
// (enables testing).
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerResolver resolves secretsmanager:// references with the SDK
// default credential chain.
//
// Reference forms:
//
//	secretsmanager:///sluice/client-key          default region
//	secretsmanager://eu-west-1/sluice/client-key explicit region
type SecretsManagerResolver struct {
	// NewClient returns a client for region ("" means the SDK default).
	// Nil uses the SDK.
	NewClient func(ctx context.Context, region string) (SecretValueGetter, error)
}

// Scheme returns "secretsmanager".
func (r *SecretsManagerResolver) Scheme() string {
	return "secretsmanager"
}

// Resolve fetches the secret's string value, falling back to its binary
// value for secrets stored as raw PEM bytes.
func (r *SecretsManagerResolver) Resolve(ctx context.Context, reference string) (string, error) {
	region, secretID, err := parseSecretsManagerReference(reference)
	if err != nil {
		return "", err
	}

	newClient := r.NewClient
	if newClient == nil {
		newClient = newSecretsManagerClient
	}
	client, err := newClient(ctx, region)
	if err != nil {
		return "", &BackendError{
			Backend:   secretsManagerBackend,
			Reference: reference,
			Reason:    "loading AWS config: " + err.Error(),
			Err:       err,
		}
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", secretsManagerError(err, reference, secretID)
	}

	switch {
	case out.SecretString != nil:
		return aws.ToString(out.SecretString), nil
	case len(out.SecretBinary) > 0:
		return string(out.SecretBinary), nil
	default:
		return "", &BackendError{
			Backend:   secretsManagerBackend,
			Reference: reference,
			Reason:    "secret has no value",
		}
	}
}

func newSecretsManagerClient(ctx context.Context, region string) (SecretValueGetter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// parseSecretsManagerReference extracts region and secret ID.
// secretsmanager:///a/b -> ("", "a/b")
// secretsmanager://us-west-2/a/b -> ("us-west-2", "a/b")
func parseSecretsManagerReference(ref string) (region, secretID string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "invalid URI"}
	}
	if u.Scheme != "secretsmanager" {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "expected secretsmanager:// scheme"}
	}

	secretID = strings.TrimPrefix(u.Path, "/")
	if secretID == "" {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "secret ID is required"}
	}
	return u.Host, secretID, nil
}

func secretsManagerError(err error, reference, secretID string) error {
	be := &BackendError{
		Backend:   secretsManagerBackend,
		Reference: reference,
		Reason:    err.Error(),
		Err:       err,
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return be
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		be.Reason = "secret not found"
		be.Fix = "Create it with:\n  aws secretsmanager create-secret --name \"" + secretID + "\" --secret-string file://certificate.pem"
	case "AccessDeniedException":
		be.Reason = "access denied"
		be.Fix = "Check IAM permissions for secretsmanager:GetSecretValue on " + secretID
	case "DecryptionFailure":
		be.Reason = "could not decrypt secret"
		be.Fix = "Check kms:Decrypt permission on the secret's KMS key"
	case "ExpiredTokenException", "ExpiredToken":
		be.Reason = "AWS credentials expired"
		be.Fix = "Refresh your credentials, e.g. run: aws sso login"
	default:
		be.Reason = apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
	}
	return be
}

func init() {
	Register(&SecretsManagerResolver{})
}
