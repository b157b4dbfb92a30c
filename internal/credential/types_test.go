package credential

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func validRolesAnywhere() RolesAnywhereConfig {
	return RolesAnywhereConfig{
		Region:         "sa-east-1",
		ProfileARN:     "arn:aws:rolesanywhere:sa-east-1:123456789012:profile/p-1",
		RoleARN:        "arn:aws:iam::123456789012:role/BedrockInvoker",
		TrustAnchorARN: "arn:aws:rolesanywhere:sa-east-1:123456789012:trust-anchor/ta-1",
		Certificate:    "./data/certificate.pem",
		PrivateKey:     "./data/privkey.pem",
	}
}

func TestRolesAnywhereConfig_SessionDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"", 0, false},
		{"15m", 15 * time.Minute, false},
		{"1h", time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"5m", 0, true},
		{"13h", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := &RolesAnywhereConfig{SessionDurationStr: tt.input}
			got, err := cfg.SessionDuration()
			if (err != nil) != tt.wantErr {
				t.Fatalf("SessionDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("SessionDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRolesAnywhereConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RolesAnywhereConfig)
		wantErr []string
	}{
		{name: "valid", mutate: func(*RolesAnywhereConfig) {}},
		{
			name:    "empty config reports everything",
			mutate:  func(c *RolesAnywhereConfig) { *c = RolesAnywhereConfig{} },
			wantErr: []string{"profile_arn", "trust_anchor_arn", "role_arn", "certificate is required", "private_key is required"},
		},
		{
			name: "region mismatch",
			mutate: func(c *RolesAnywhereConfig) {
				c.TrustAnchorARN = "arn:aws:rolesanywhere:us-east-1:123456789012:trust-anchor/ta-1"
			},
			wantErr: []string{"does not match trust anchor region"},
		},
		{
			name: "account mismatch",
			mutate: func(c *RolesAnywhereConfig) {
				c.ProfileARN = "arn:aws:rolesanywhere:sa-east-1:999999999999:profile/p-1"
			},
			wantErr: []string{"does not match trust anchor account"},
		},
		{
			name:    "bad session duration",
			mutate:  func(c *RolesAnywhereConfig) { c.SessionDurationStr = "1m" },
			wantErr: []string{"session_duration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRolesAnywhere()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err, want)
				}
			}
		})
	}
}

func TestRolesAnywhereConfig_HelperArgs(t *testing.T) {
	cfg := validRolesAnywhere()
	cfg.Region = "us-east-1" // model region differs from the anchor's
	cfg.SessionDurationStr = "30m"

	got := cfg.HelperArgs("/tmp/c.pem", "/tmp/k.pem")
	want := []string{
		"credential-process",
		"--certificate", "/tmp/c.pem",
		"--private-key", "/tmp/k.pem",
		"--trust-anchor-arn", cfg.TrustAnchorARN,
		"--profile-arn", cfg.ProfileARN,
		"--role-arn", cfg.RoleARN,
		"--region", "sa-east-1",
		"--session-duration", "1800",
	}
	if !slices.Equal(got, want) {
		t.Errorf("HelperArgs() =\n%q\nwant\n%q", got, want)
	}
}

func TestRolesAnywhereConfig_Helper(t *testing.T) {
	cfg := RolesAnywhereConfig{}
	if got := cfg.Helper(); got != DefaultSigningHelper {
		t.Errorf("Helper() = %q, want %q", got, DefaultSigningHelper)
	}
	cfg.HelperPath = "/opt/bin/aws_signing_helper"
	if got := cfg.Helper(); got != "/opt/bin/aws_signing_helper" {
		t.Errorf("Helper() = %q", got)
	}
}
