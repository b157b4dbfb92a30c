package credential

import (
	"fmt"
	"strings"
)

// ARN is a parsed Amazon Resource Name.
// Format: arn:PARTITION:SERVICE:REGION:ACCOUNT_ID:RESOURCE
type ARN struct {
	Partition string
	Service   string
	Region    string
	Account   string
	Resource  string
}

// String reassembles the ARN.
func (a ARN) String() string {
	return strings.Join([]string{"arn", a.Partition, a.Service, a.Region, a.Account, a.Resource}, ":")
}

// ParseARN splits an ARN into its parts and checks the fields every ARN
// sluice handles must carry. Supported partitions: aws, aws-cn, aws-us-gov
func ParseARN(arn string) (ARN, error) {
	if arn == "" {
		return ARN{}, fmt.Errorf("ARN is required")
	}

	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 {
		return ARN{}, fmt.Errorf("invalid ARN format: expected 6 colon-separated parts, got %d", len(parts))
	}
	if parts[0] != "arn" {
		return ARN{}, fmt.Errorf("invalid ARN: must start with 'arn:'")
	}

	a := ARN{
		Partition: parts[1],
		Service:   parts[2],
		Region:    parts[3],
		Account:   parts[4],
		Resource:  parts[5],
	}

	switch a.Partition {
	case "aws", "aws-cn", "aws-us-gov":
	default:
		return ARN{}, fmt.Errorf("invalid ARN partition: %s (expected aws, aws-cn, or aws-us-gov)", a.Partition)
	}

	if a.Account == "" {
		return ARN{}, fmt.Errorf("invalid ARN: account ID is required")
	}
	return a, nil
}

// ParseRoleARN validates an IAM role ARN.
// ARN format: arn:PARTITION:iam::ACCOUNT_ID:role/ROLE_NAME
func ParseRoleARN(arn string) (ARN, error) {
	if arn == "" {
		return ARN{}, fmt.Errorf("role ARN is required")
	}
	a, err := ParseARN(arn)
	if err != nil {
		return ARN{}, err
	}

	if a.Service != "iam" {
		return ARN{}, fmt.Errorf("invalid ARN: must be an IAM ARN (got %s)", a.Service)
	}
	if !strings.HasPrefix(a.Resource, "role/") {
		return ARN{}, fmt.Errorf("invalid ARN: must be a role ARN (got %s)", a.Resource)
	}
	if strings.TrimPrefix(a.Resource, "role/") == "" {
		return ARN{}, fmt.Errorf("invalid ARN: role name is required")
	}
	return a, nil
}

// Roles Anywhere resource types.
const (
	ResourceProfile     = "profile"
	ResourceTrustAnchor = "trust-anchor"
)

// ParseRolesAnywhereARN validates a Roles Anywhere profile or trust anchor ARN.
// ARN format: arn:PARTITION:rolesanywhere:REGION:ACCOUNT_ID:KIND/ID
func ParseRolesAnywhereARN(arn, kind string) (ARN, error) {
	if arn == "" {
		return ARN{}, fmt.Errorf("%s ARN is required", kind)
	}
	a, err := ParseARN(arn)
	if err != nil {
		return ARN{}, err
	}

	if a.Service != "rolesanywhere" {
		return ARN{}, fmt.Errorf("invalid ARN: must be a Roles Anywhere ARN (got %s)", a.Service)
	}
	if a.Region == "" {
		return ARN{}, fmt.Errorf("invalid ARN: %s region is required", kind)
	}
	if !strings.HasPrefix(a.Resource, kind+"/") {
		return ARN{}, fmt.Errorf("invalid ARN: must be a %s ARN (got %s)", kind, a.Resource)
	}
	if strings.TrimPrefix(a.Resource, kind+"/") == "" {
		return ARN{}, fmt.Errorf("invalid ARN: %s ID is required", kind)
	}
	return a, nil
}
