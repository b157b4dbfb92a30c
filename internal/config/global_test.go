package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points Dir at a temp directory and clears the variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SLUICE_HOME", dir)
	for _, env := range []string{
		"AWS_REGION", "SLUICE_MODEL_ID", "SLUICE_ROLES_ANYWHERE_PROFILE_ARN",
		"SLUICE_ROLES_ANYWHERE_ROLE_ARN", "SLUICE_ROLES_ANYWHERE_TRUST_ANCHOR_ARN",
		"SLUICE_CERTIFICATE", "SLUICE_PRIVATE_KEY", "SLUICE_SIGNING_HELPER",
		"SLUICE_SERVE_ADDR", "SLUICE_AUDIT",
	} {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultModelID, cfg.ModelID)
	assert.Equal(t, 512, cfg.Generation.MaxTokenCount)
	assert.Equal(t, 0.7, cfg.Generation.Temperature)
	assert.Equal(t, 0.9, cfg.Generation.TopP)
	assert.NotNil(t, cfg.Generation.StopSequences)
	assert.Empty(t, cfg.Generation.StopSequences)
	assert.Equal(t, "us-east-1", cfg.TaskRole.Region)
	assert.Equal(t, "sa-east-1", cfg.RolesAnywhere.Region)
	assert.Equal(t, "./data/certificate.pem", cfg.RolesAnywhere.Certificate)
	assert.Equal(t, "./data/privkey.pem", cfg.RolesAnywhere.PrivateKey)
	assert.Equal(t, "aws_signing_helper", cfg.RolesAnywhere.HelperPath)
	assert.Equal(t, 14, cfg.Debug.RetentionDays)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.Audit.Path)
	assert.Equal(t, ":8085", cfg.Serve.Addr)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)

	content := `
model_id: amazon.titan-text-lite-v1
generation:
  max_token_count: 256
  stop_sequences: ["User:"]
roles_anywhere:
  profile_arn: arn:aws:rolesanywhere:sa-east-1:123456789012:profile/p-1
  role_arn: arn:aws:iam::123456789012:role/BedrockInvoker
  trust_anchor_arn: arn:aws:rolesanywhere:sa-east-1:123456789012:trust-anchor/ta-1
  certificate: secretsmanager:///sluice/cert
  session_duration: 30m
audit:
  enabled: false
serve:
  rate_limit: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "amazon.titan-text-lite-v1", cfg.ModelID)
	assert.Equal(t, 256, cfg.Generation.MaxTokenCount)
	assert.Equal(t, 0.7, cfg.Generation.Temperature, "unset fields keep defaults")
	assert.Equal(t, []string{"User:"}, cfg.Generation.StopSequences)
	assert.Equal(t, "secretsmanager:///sluice/cert", cfg.RolesAnywhere.Certificate)
	assert.Equal(t, "./data/privkey.pem", cfg.RolesAnywhere.PrivateKey)
	assert.Equal(t, "30m", cfg.RolesAnywhere.SessionDurationStr)
	assert.NoError(t, cfg.RolesAnywhere.Validate())
	assert.False(t, cfg.Audit.Enabled)
	assert.Zero(t, cfg.Serve.RateLimit)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("task_role:\n  region: eu-west-1\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.TaskRole.Region)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model_id: [unterminated"), 0600))

	_, err := Load("")
	assert.ErrorContains(t, err, "parsing")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("task_role:\n  region: eu-west-1\n"), 0600))

	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("SLUICE_MODEL_ID", "amazon.titan-text-premier-v1:0")
	t.Setenv("SLUICE_CERTIFICATE", "/etc/pki/client.pem")
	t.Setenv("SLUICE_SIGNING_HELPER", "/usr/local/bin/aws_signing_helper")
	t.Setenv("SLUICE_AUDIT", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.TaskRole.Region, "env beats file")
	assert.Equal(t, "us-west-2", cfg.RolesAnywhere.Region)
	assert.Equal(t, "amazon.titan-text-premier-v1:0", cfg.ModelID)
	assert.Equal(t, "/etc/pki/client.pem", cfg.RolesAnywhere.Certificate)
	assert.Equal(t, "/usr/local/bin/aws_signing_helper", cfg.RolesAnywhere.HelperPath)
	assert.False(t, cfg.Audit.Enabled)
}

func TestDir(t *testing.T) {
	t.Setenv("SLUICE_HOME", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.sluice", Dir())
	assert.Equal(t, "/home/tester/.sluice/config.yaml", DefaultPath())

	t.Setenv("SLUICE_HOME", "/var/lib/sluice")
	assert.Equal(t, "/var/lib/sluice", Dir())
}
