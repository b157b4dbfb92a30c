// Package config loads sluice settings from ~/.sluice/config.yaml and the
// environment. Defaults are applied first, then the file, then environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/majorcontext/sluice/internal/credential"
	"gopkg.in/yaml.v3"
)

// DefaultModelID is the Bedrock model invoked when none is given.
const DefaultModelID = "amazon.titan-text-express-v1"

// Default regions for each credential source.
const (
	DefaultTaskRoleRegion      = "us-east-1"
	DefaultRolesAnywhereRegion = "sa-east-1"
)

// Config holds all sluice settings.
type Config struct {
	ModelID       string                         `yaml:"model_id"`
	Generation    GenerationConfig               `yaml:"generation"`
	TaskRole      TaskRoleConfig                 `yaml:"task_role"`
	RolesAnywhere credential.RolesAnywhereConfig `yaml:"roles_anywhere"`
	Debug         DebugConfig                    `yaml:"debug"`
	Audit         AuditConfig                    `yaml:"audit"`
	Serve         ServeConfig                    `yaml:"serve"`
}

// GenerationConfig holds the text generation parameters sent with every
// request.
type GenerationConfig struct {
	MaxTokenCount int      `yaml:"max_token_count"`
	Temperature   float64  `yaml:"temperature"`
	TopP          float64  `yaml:"top_p"`
	StopSequences []string `yaml:"stop_sequences"`
}

// TaskRoleConfig configures the default-chain (ECS task role) source.
type TaskRoleConfig struct {
	Region string `yaml:"region"`
}

// DebugConfig controls the JSON debug log files.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// AuditConfig controls invocation history.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path defaults to <dir>/history.db.
	Path string `yaml:"path,omitempty"`
}

// ServeConfig configures `sluice serve`.
type ServeConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int     `yaml:"burst"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		ModelID: DefaultModelID,
		Generation: GenerationConfig{
			MaxTokenCount: 512,
			Temperature:   0.7,
			TopP:          0.9,
			StopSequences: []string{},
		},
		TaskRole: TaskRoleConfig{Region: DefaultTaskRoleRegion},
		RolesAnywhere: credential.RolesAnywhereConfig{
			Region:      DefaultRolesAnywhereRegion,
			Certificate: "./data/certificate.pem",
			PrivateKey:  "./data/privkey.pem",
			HelperPath:  credential.DefaultSigningHelper,
		},
		Debug: DebugConfig{RetentionDays: 14},
		Audit: AuditConfig{Enabled: true},
		Serve: ServeConfig{Addr: ":8085", RateLimit: 5, Burst: 10},
	}
}

// Load reads the config file at path (DefaultPath if empty) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = filepath.Join(Dir(), "history.db")
	}
	if cfg.Generation.StopSequences == nil {
		cfg.Generation.StopSequences = []string{}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.TaskRole.Region = region
		cfg.RolesAnywhere.Region = region
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"SLUICE_MODEL_ID", &cfg.ModelID},
		{"SLUICE_ROLES_ANYWHERE_PROFILE_ARN", &cfg.RolesAnywhere.ProfileARN},
		{"SLUICE_ROLES_ANYWHERE_ROLE_ARN", &cfg.RolesAnywhere.RoleARN},
		{"SLUICE_ROLES_ANYWHERE_TRUST_ANCHOR_ARN", &cfg.RolesAnywhere.TrustAnchorARN},
		{"SLUICE_CERTIFICATE", &cfg.RolesAnywhere.Certificate},
		{"SLUICE_PRIVATE_KEY", &cfg.RolesAnywhere.PrivateKey},
		{"SLUICE_SIGNING_HELPER", &cfg.RolesAnywhere.HelperPath},
		{"SLUICE_SERVE_ADDR", &cfg.Serve.Addr},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("SLUICE_AUDIT"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Audit.Enabled = enabled
		}
	}
}

// Dir returns the sluice state directory: $SLUICE_HOME, or ~/.sluice.
func Dir() string {
	if dir := os.Getenv("SLUICE_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".sluice")
	}
	return filepath.Join(homeDir, ".sluice")
}

// DefaultPath returns the path of the default config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
