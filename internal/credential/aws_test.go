package credential

import (
	"strings"
	"testing"
)

func TestParseRoleARN(t *testing.T) {
	tests := []struct {
		name    string
		arn     string
		wantErr string
	}{
		{name: "valid", arn: "arn:aws:iam::123456789012:role/BedrockInvoker"},
		{name: "valid with path", arn: "arn:aws:iam::123456789012:role/service/BedrockInvoker"},
		{name: "valid dotted name", arn: "arn:aws:iam::101067722371:role/a1.sts_bedrock_test_role"},
		{name: "aws-cn partition", arn: "arn:aws-cn:iam::123456789012:role/BedrockInvoker"},
		{name: "aws-us-gov partition", arn: "arn:aws-us-gov:iam::123456789012:role/BedrockInvoker"},
		{name: "empty", arn: "", wantErr: "role ARN is required"},
		{name: "not enough parts", arn: "arn:aws:iam", wantErr: "expected 6 colon-separated parts"},
		{name: "wrong prefix", arn: "arm:aws:iam::123456789012:role/R", wantErr: "must start with 'arn:'"},
		{name: "invalid partition", arn: "arn:aws-xx:iam::123456789012:role/R", wantErr: "invalid ARN partition"},
		{name: "not iam", arn: "arn:aws:s3::123456789012:role/R", wantErr: "must be an IAM ARN"},
		{name: "missing account", arn: "arn:aws:iam:::role/R", wantErr: "account ID is required"},
		{name: "not a role", arn: "arn:aws:iam::123456789012:user/U", wantErr: "must be a role ARN"},
		{name: "role without name", arn: "arn:aws:iam::123456789012:role/", wantErr: "role name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoleARN(tt.arn)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseRoleARN(%q) error = %v, want containing %q", tt.arn, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoleARN(%q) unexpected error: %v", tt.arn, err)
			}
			if got.String() != tt.arn {
				t.Errorf("String() = %q, want %q", got.String(), tt.arn)
			}
		})
	}
}

func TestParseRolesAnywhereARN(t *testing.T) {
	const (
		profile = "arn:aws:rolesanywhere:sa-east-1:101067722371:profile/c1b25145-d81a-4034-a27d-bdd293f836e0"
		anchor  = "arn:aws:rolesanywhere:sa-east-1:101067722371:trust-anchor/c32fb318-8eae-4099-857b-37517cf5904e"
	)

	tests := []struct {
		name    string
		arn     string
		kind    string
		wantErr string
	}{
		{name: "profile", arn: profile, kind: ResourceProfile},
		{name: "trust anchor", arn: anchor, kind: ResourceTrustAnchor},
		{name: "anchor given as profile", arn: anchor, kind: ResourceProfile, wantErr: "must be a profile ARN"},
		{name: "profile given as anchor", arn: profile, kind: ResourceTrustAnchor, wantErr: "must be a trust-anchor ARN"},
		{name: "empty", arn: "", kind: ResourceProfile, wantErr: "profile ARN is required"},
		{name: "wrong service", arn: "arn:aws:iam::101067722371:profile/x", kind: ResourceProfile, wantErr: "must be a Roles Anywhere ARN"},
		{name: "missing region", arn: "arn:aws:rolesanywhere::101067722371:profile/x", kind: ResourceProfile, wantErr: "region is required"},
		{name: "missing id", arn: "arn:aws:rolesanywhere:sa-east-1:101067722371:profile/", kind: ResourceProfile, wantErr: "profile ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRolesAnywhereARN(tt.arn, tt.kind)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Region != "sa-east-1" || got.Account != "101067722371" {
				t.Errorf("parsed = %+v", got)
			}
		})
	}
}
