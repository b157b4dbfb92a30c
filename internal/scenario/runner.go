// Package scenario runs a prompt through a credential source and Bedrock,
// turning every failure into an absent result.
package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/majorcontext/sluice/internal/audit"
	"github.com/majorcontext/sluice/internal/bedrock"
	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/id"
	"github.com/majorcontext/sluice/internal/log"
	"github.com/majorcontext/sluice/internal/provider"
)

// Generator sends a prompt to a model. *bedrock.Client implements it.
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// Recorder stores invocation history. *audit.Store implements it.
type Recorder interface {
	Record(inv audit.Invocation) (*audit.Entry, error)
}

// GeneratorFactory builds a Generator for a resolved AWS config.
type GeneratorFactory func(cfg aws.Config, gen bedrock.TextGenerationConfig) Generator

// Runner executes invocations against one credential source. The session
// is loaded on first use and shared by later calls; a failed load is
// retried on the next call.
type Runner struct {
	cfg          *config.Config
	source       provider.CredentialSource
	newGenerator GeneratorFactory
	recorder     Recorder

	mu      sync.Mutex
	session *provider.Session
	gen     Generator
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder records every invocation to r.
func WithRecorder(r Recorder) Option {
	return func(rn *Runner) { rn.recorder = r }
}

// WithGeneratorFactory replaces the Bedrock client constructor (for testing).
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(rn *Runner) { rn.newGenerator = f }
}

// New creates a runner for source.
func New(cfg *config.Config, source provider.CredentialSource, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		source: source,
		newGenerator: func(cfg aws.Config, gen bedrock.TextGenerationConfig) Generator {
			return bedrock.NewClient(cfg, gen)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the name of the runner's credential source.
func (r *Runner) Source() string {
	return r.source.Name()
}

// GetResponse sends prompt to modelID (the configured default if empty) and
// returns the first generated text. Any failure is logged and reported as
// ok == false; nothing is returned as an error.
func (r *Runner) GetResponse(ctx context.Context, prompt, modelID string) (text string, ok bool) {
	if modelID == "" {
		modelID = r.cfg.ModelID
	}
	if modelID == "" {
		modelID = config.DefaultModelID
	}

	inv := audit.Invocation{
		ID:          id.Generate("inv"),
		Source:      r.source.Name(),
		ModelID:     modelID,
		PromptChars: len([]rune(prompt)),
	}
	logger := log.ForInvocation(inv.ID)
	start := time.Now()

	defer func() {
		inv.DurationMs = time.Since(start).Milliseconds()
		inv.OK = ok
		inv.OutputChars = len([]rune(text))
		r.record(inv)
	}()

	gen, region, err := r.generator(ctx)
	if err != nil {
		logger.Error("error calling Bedrock", "source", inv.Source, "error", err)
		inv.Error = err.Error()
		return "", false
	}
	inv.Region = region

	logger.Info("invoking model", "model_id", modelID, "source", inv.Source, "region", region)

	text, err = gen.Generate(ctx, modelID, prompt)
	if err != nil {
		logger.Error("error calling Bedrock", "model_id", modelID, "error", err)
		inv.Error = err.Error()
		return "", false
	}

	logger.Debug("model responded", "output_chars", len([]rune(text)), "duration", time.Since(start))
	return text, true
}

// generator returns the shared generator, loading the session if needed.
func (r *Runner) generator(ctx context.Context) (Generator, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != nil {
		return r.gen, r.session.Region, nil
	}

	sess, err := r.source.Load(ctx, r.cfg)
	if err != nil {
		return nil, "", err
	}
	r.session = sess
	r.gen = r.newGenerator(sess.Config, textGenerationConfig(r.cfg.Generation))
	return r.gen, sess.Region, nil
}

func (r *Runner) record(inv audit.Invocation) {
	if r.recorder == nil {
		return
	}
	if _, err := r.recorder.Record(inv); err != nil {
		log.Warn("recording invocation", "invocation_id", inv.ID, "error", err)
	}
}

// Close releases the credential session, if one was loaded.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.session.Close()
	r.session = nil
	r.gen = nil
	return err
}

func textGenerationConfig(g config.GenerationConfig) bedrock.TextGenerationConfig {
	stop := g.StopSequences
	if stop == nil {
		stop = []string{}
	}
	return bedrock.TextGenerationConfig{
		MaxTokenCount: g.MaxTokenCount,
		Temperature:   g.Temperature,
		TopP:          g.TopP,
		StopSequences: stop,
	}
}
