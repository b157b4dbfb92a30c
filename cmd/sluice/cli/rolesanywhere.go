package cli

import "github.com/spf13/cobra"

var rolesAnywhere = &scenarioCommand{
	source:  "roles-anywhere",
	started: "Starting Hybrid Identity scenario (Scenario 2)...",
	prompt:  "Explain how IAM Roles Anywhere uses X.509 certificates to provide AWS access.",
	failure: "Failed to get response from Bedrock. Check if certificates and helper are configured correctly.",
}

var rolesAnywhereCmd = &cobra.Command{
	Use:     "roles-anywhere",
	Aliases: []string{"scenario2", "iamra"},
	Short:   "Call Bedrock with IAM Roles Anywhere credentials from an X.509 certificate",
	Long: `Call Bedrock with temporary credentials from IAM Roles Anywhere.

The aws_signing_helper binary exchanges the certificate and private key for
role credentials. Configure the ARNs in ~/.sluice/config.yaml:

  roles_anywhere:
    profile_arn: arn:aws:rolesanywhere:sa-east-1:123456789012:profile/...
    role_arn: arn:aws:iam::123456789012:role/BedrockInvoker
    trust_anchor_arn: arn:aws:rolesanywhere:sa-east-1:123456789012:trust-anchor/...
    certificate: ./data/certificate.pem
    private_key: ./data/privkey.pem

certificate and private_key may also be secretsmanager:// or ssm:// references.
The region defaults to sa-east-1 and follows AWS_REGION.

Examples:
  sluice roles-anywhere
  SLUICE_CERTIFICATE=secretsmanager:///sluice/cert sluice roles-anywhere`,
	Args: cobra.NoArgs,
	RunE: rolesAnywhere.run,
}

func init() {
	rolesAnywhere.bind(rolesAnywhereCmd)
	rootCmd.AddCommand(rolesAnywhereCmd)
}
