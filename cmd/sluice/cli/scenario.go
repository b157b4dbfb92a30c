package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/majorcontext/sluice/internal/audit"
	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/provider"
	"github.com/majorcontext/sluice/internal/scenario"
	"github.com/spf13/cobra"
)

const (
	responseHeader = "--- Bedrock Response ---"
	responseFooter = "------------------------"
)

// responder is the part of *scenario.Runner the commands use.
type responder interface {
	GetResponse(ctx context.Context, prompt, modelID string) (string, bool)
	Close() error
}

// newResponder builds the runner for a source (replaceable in tests).
var newResponder = func(cfg *config.Config, src provider.CredentialSource, history *audit.Store) responder {
	var opts []scenario.Option
	if history != nil {
		opts = append(opts, scenario.WithRecorder(history))
	}
	return scenario.New(cfg, src, opts...)
}

// scenarioCommand describes one scenario command.
type scenarioCommand struct {
	source  string
	started string
	prompt  string
	failure string

	// flags
	promptFlag string
	modelFlag  string
}

// bind marks cmd as a scenario and adds the scenario flags.
func (s *scenarioCommand) bind(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[scenarioAnnotation] = s.source
	cmd.Flags().StringVar(&s.promptFlag, "prompt", "", "prompt to send instead of the built-in example")
	cmd.Flags().StringVar(&s.modelFlag, "model", "", "model ID (default from config, amazon.titan-text-express-v1)")
}

// run executes the scenario and prints the result. Failures are reported
// on stdout and never change the exit status.
func (s *scenarioCommand) run(cmd *cobra.Command, _ []string) error {
	if configErr != nil {
		log.Error("error calling Bedrock", "source", s.source, "error", configErr)
		printResult(cmd.OutOrStdout(), "", false, s.failure)
		return nil
	}

	src, err := provider.Lookup(s.source)
	if err != nil {
		return err
	}

	log.Info(s.started)

	history := openHistory(cfg)
	if history != nil {
		defer history.Close()
	}

	r := newResponder(cfg, src, history)
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn("releasing credentials", "source", src.Name(), "error", err)
		}
	}()

	prompt := s.prompt
	if s.promptFlag != "" {
		prompt = s.promptFlag
	}

	text, ok := r.GetResponse(cmd.Context(), prompt, s.modelFlag)
	printResult(cmd.OutOrStdout(), text, ok, s.failure)
	return nil
}

// printResult writes the response banner, or the failure message when the
// call failed or produced no text.
func printResult(w io.Writer, text string, ok bool, failure string) {
	if !ok || text == "" {
		fmt.Fprintln(w, failure)
		return
	}
	fmt.Fprintln(w, responseHeader)
	fmt.Fprintln(w, text)
	fmt.Fprintln(w, responseFooter)
}

// openHistory opens the invocation history if enabled. Failure to open is
// logged and leaves history off for this run.
func openHistory(cfg *config.Config) *audit.Store {
	if !cfg.Audit.Enabled {
		return nil
	}
	store, err := audit.OpenStore(cfg.Audit.Path)
	if err != nil {
		log.Warn("invocation history disabled", "path", cfg.Audit.Path, "error", err)
		return nil
	}
	return store
}
