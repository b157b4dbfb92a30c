package cli

import (
	"encoding/json"

	"github.com/majorcontext/sluice/internal/provider"
	awsprovider "github.com/majorcontext/sluice/internal/providers/aws"
	"github.com/majorcontext/sluice/internal/ui"
	"github.com/spf13/cobra"
)

var whoamiSource string

// newIdentityClient is replaceable in tests.
var newIdentityClient = awsprovider.NewIdentityClient

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show which AWS identity a credential source resolves to",
	Long: `Load a credential source and print the identity STS reports for it.

Use this to confirm that the task role or the Roles Anywhere role is the one
Bedrock will see before invoking a model.

Examples:
  sluice whoami
  sluice whoami --source roles-anywhere`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	whoamiCmd.Flags().StringVar(&whoamiSource, "source", "task-role", "credential source (task-role, roles-anywhere)")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	src, err := provider.Lookup(whoamiSource)
	if err != nil {
		return err
	}

	sess, err := src.Load(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	id, err := awsprovider.CallerIdentity(cmd.Context(), newIdentityClient(sess.Config))
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
			"source":  sess.Source,
			"region":  sess.Region,
			"account": id.Account,
			"arn":     id.ARN,
			"user_id": id.UserID,
		})
	}

	ui.Section("Identity")
	ui.Field("Source", 7, sess.Source)
	ui.Field("Region", 7, sess.Region)
	ui.Field("Account", 7, id.Account)
	ui.Field("ARN", 7, id.ARN)
	ui.Field("User ID", 7, id.UserID)
	return nil
}
