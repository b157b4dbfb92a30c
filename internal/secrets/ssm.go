package secrets

import (
	"bytes"
	"context"
	"net/url"
	"os/exec"
	"strings"
)

const ssmBackend = "AWS SSM"

// SSMResolver resolves ssm:// references from Systems Manager Parameter
// Store through the aws CLI.
type SSMResolver struct{}

// Scheme returns "ssm".
func (r *SSMResolver) Scheme() string {
	return "ssm"
}

// Resolve fetches a decrypted parameter using `aws ssm get-parameter`.
func (r *SSMResolver) Resolve(ctx context.Context, reference string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := exec.LookPath("aws"); err != nil {
		return "", &BackendError{
			Backend: ssmBackend,
			Reason:  "aws CLI not found in PATH",
			Fix:     "Install from https://aws.amazon.com/cli/",
		}
	}

	region, paramPath, err := parseSSMReference(reference)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "aws", ssmArgs(region, paramPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", parseSSMError(stderr.Bytes(), reference, paramPath)
	}

	// The CLI adds one trailing newline; PEM bodies keep their own.
	return strings.TrimSuffix(stdout.String(), "\n"), nil
}

func ssmArgs(region, paramPath string) []string {
	args := []string{
		"ssm", "get-parameter",
		"--name", paramPath,
		"--with-decryption",
		"--query", "Parameter.Value",
		"--output", "text",
	}
	if region != "" {
		args = append(args, "--region", region)
	}
	return args
}

// parseSSMReference extracts region and parameter path from ssm:// URI.
// ssm:///path/to/param -> ("", "/path/to/param")
// ssm://us-west-2/path/to/param -> ("us-west-2", "/path/to/param")
func parseSSMReference(ref string) (region, path string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "invalid URI"}
	}
	if u.Scheme != "ssm" {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "expected ssm:// scheme"}
	}

	path = u.Path
	if path == "" || path[0] != '/' {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "parameter path must start with /"}
	}
	return u.Host, path, nil
}

// parseSSMError converts aws CLI stderr into a BackendError with a fix.
func parseSSMError(stderr []byte, reference, paramPath string) error {
	msg := strings.TrimSpace(string(stderr))
	be := &BackendError{Backend: ssmBackend, Reference: reference, Reason: msg}

	switch {
	case strings.Contains(msg, "ParameterNotFound"):
		be.Reason = "parameter not found"
		be.Fix = "Store the PEM with:\n  aws ssm put-parameter --name \"" + paramPath + "\" --type SecureString --value file://certificate.pem"
	case strings.Contains(msg, "AccessDeniedException"):
		be.Reason = "access denied"
		be.Fix = "Check IAM permissions for ssm:GetParameter on " + paramPath
	case strings.Contains(msg, "ExpiredToken"):
		be.Reason = "AWS credentials expired"
		be.Fix = "Refresh your credentials, e.g. run: aws sso login"
	case strings.Contains(msg, "Unable to locate credentials"):
		be.Reason = "no AWS credentials found"
		be.Fix = "Configure credentials with aws configure, AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, or aws sso login"
	case strings.Contains(msg, "Could not connect to the endpoint URL"):
		be.Reason = "could not connect to AWS endpoint"
		be.Fix = "Check the region in the reference and network connectivity."
	}
	return be
}

func init() {
	Register(&SSMResolver{})
}
