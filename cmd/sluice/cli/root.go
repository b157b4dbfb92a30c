// Package cli implements the sluice command-line interface using Cobra.
// It provides one command per credential scenario plus commands to check
// identity, serve invocations over HTTP, and inspect invocation history.
package cli

import (
	"path/filepath"

	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// cfg is loaded once in PersistentPreRunE.
	cfg *config.Config

	// configErr holds a config load failure for scenario commands, which
	// report it as a failed invocation instead of exiting non-zero.
	configErr error
)

// scenarioAnnotation marks commands whose failures are printed, not returned.
const scenarioAnnotation = "sluice/scenario"

var rootCmd = &cobra.Command{
	Use:   "sluice",
	Short: "Sluice - call Amazon Bedrock with short-lived AWS credentials",
	Long: `Sluice calls an Amazon Bedrock text model using short-lived credentials
obtained one of two ways:

  task-role       the default AWS provider chain (an ECS task role in production)
  roles-anywhere  IAM Roles Anywhere with an X.509 certificate and private key

Each scenario command sends a prompt and prints the model's answer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			if _, ok := cmd.Annotations[scenarioAnnotation]; !ok {
				return err
			}
			configErr = err
			loaded = config.Default()
		}
		cfg = loaded

		if err := log.Init(log.Options{
			Verbose:       verbose,
			Quiet:         quiet,
			JSONFormat:    jsonOut,
			DebugDir:      filepath.Join(config.Dir(), "debug"),
			RetentionDays: cfg.Debug.RetentionDays,
			Stderr:        cmd.ErrOrStderr(),
		}); err != nil {
			// Non-fatal: stderr logging still works without the debug file.
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.Errorf("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON log lines and JSON output where supported")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.sluice/config.yaml)")
}
