package cli

import "github.com/spf13/cobra"

var taskRole = &scenarioCommand{
	source:  "task-role",
	started: "Starting Cloud-Native Identity scenario (Scenario 1)...",
	prompt:  "Explain the importance of short-term credentials in cloud security.",
	failure: "Failed to get response from Bedrock.",
}

var taskRoleCmd = &cobra.Command{
	Use:     "task-role",
	Aliases: []string{"scenario1", "ecs"},
	Short:   "Call Bedrock with credentials from the default chain (ECS task role)",
	Long: `Call Bedrock with credentials from the AWS SDK default provider chain.

On ECS the chain resolves the task role through the container credentials
endpoint, so no keys are configured anywhere. Outside ECS the same chain
picks up environment variables, shared config, SSO or instance profiles.

The region defaults to us-east-1 and follows AWS_REGION.

Examples:
  sluice task-role
  sluice task-role --prompt "Summarize the shared responsibility model."`,
	Args: cobra.NoArgs,
	RunE: taskRole.run,
}

func init() {
	taskRole.bind(taskRoleCmd)
	rootCmd.AddCommand(taskRoleCmd)
}
