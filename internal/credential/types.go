// Package credential validates the identifiers sluice hands to AWS credential
// sources: IAM role ARNs and the IAM Roles Anywhere profile, trust anchor and
// certificate settings used by the signing helper.
package credential

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultSigningHelper is the Roles Anywhere credential helper binary name.
const DefaultSigningHelper = "aws_signing_helper"

// Roles Anywhere session duration limits.
const (
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 12 * time.Hour
)

// RolesAnywhereConfig holds the settings passed to the Roles Anywhere
// credential helper. Certificate and PrivateKey are file paths or secret
// references (see package secrets); the helper only ever sees file paths.
type RolesAnywhereConfig struct {
	// Region is where the model is invoked.
	Region             string `yaml:"region,omitempty"`
	ProfileARN         string `yaml:"profile_arn,omitempty"`
	RoleARN            string `yaml:"role_arn,omitempty"`
	TrustAnchorARN     string `yaml:"trust_anchor_arn,omitempty"`
	Certificate        string `yaml:"certificate,omitempty"`
	PrivateKey         string `yaml:"private_key,omitempty"`
	HelperPath         string `yaml:"helper_path,omitempty"`
	SessionDurationStr string `yaml:"session_duration,omitempty"`
}

// SessionDuration parses the session duration string and validates it.
// Returns 0 if not set, which leaves the choice to the helper (one hour).
func (c *RolesAnywhereConfig) SessionDuration() (time.Duration, error) {
	if c.SessionDurationStr == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SessionDurationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid session duration %q: %w", c.SessionDurationStr, err)
	}
	if d < MinSessionDuration {
		return 0, fmt.Errorf("session duration %v is less than minimum %v", d, MinSessionDuration)
	}
	if d > MaxSessionDuration {
		return 0, fmt.Errorf("session duration %v exceeds maximum %v", d, MaxSessionDuration)
	}
	return d, nil
}

// Helper returns the helper binary, defaulting to DefaultSigningHelper.
func (c *RolesAnywhereConfig) Helper() string {
	if c.HelperPath == "" {
		return DefaultSigningHelper
	}
	return c.HelperPath
}

// Validate checks every field the helper needs. All problems are reported
// together.
func (c *RolesAnywhereConfig) Validate() error {
	var errs []error

	profile, err := ParseRolesAnywhereARN(c.ProfileARN, ResourceProfile)
	if err != nil {
		errs = append(errs, fmt.Errorf("profile_arn: %w", err))
	}
	anchor, err := ParseRolesAnywhereARN(c.TrustAnchorARN, ResourceTrustAnchor)
	if err != nil {
		errs = append(errs, fmt.Errorf("trust_anchor_arn: %w", err))
	}
	if _, err := ParseRoleARN(c.RoleARN); err != nil {
		errs = append(errs, fmt.Errorf("role_arn: %w", err))
	}

	// Profiles and trust anchors are regional and are only matched within
	// one account and region.
	if profile.Region != "" && anchor.Region != "" {
		if profile.Region != anchor.Region {
			errs = append(errs, fmt.Errorf("profile region %s does not match trust anchor region %s", profile.Region, anchor.Region))
		}
		if profile.Account != anchor.Account {
			errs = append(errs, fmt.Errorf("profile account %s does not match trust anchor account %s", profile.Account, anchor.Account))
		}
	}

	if c.Certificate == "" {
		errs = append(errs, fmt.Errorf("certificate is required"))
	}
	if c.PrivateKey == "" {
		errs = append(errs, fmt.Errorf("private_key is required"))
	}
	if _, err := c.SessionDuration(); err != nil {
		errs = append(errs, fmt.Errorf("session_duration: %w", err))
	}

	return errors.Join(errs...)
}

// HelperArgs returns the credential-process arguments for the helper, given
// on-disk certificate and key paths.
func (c *RolesAnywhereConfig) HelperArgs(certPath, keyPath string) []string {
	args := []string{
		"credential-process",
		"--certificate", certPath,
		"--private-key", keyPath,
		"--trust-anchor-arn", c.TrustAnchorARN,
		"--profile-arn", c.ProfileARN,
		"--role-arn", c.RoleARN,
	}
	// The Roles Anywhere endpoint lives in the trust anchor's region, which
	// need not be the region the model is invoked in.
	if anchor, err := ParseRolesAnywhereARN(c.TrustAnchorARN, ResourceTrustAnchor); err == nil {
		args = append(args, "--region", anchor.Region)
	}
	if d, err := c.SessionDuration(); err == nil && d > 0 {
		args = append(args, "--session-duration", strconv.Itoa(int(d.Seconds())))
	}
	return args
}
