package provider

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/majorcontext/sluice/internal/config"
)

// CredentialSource produces AWS credentials for a model invocation.
type CredentialSource interface {
	// Name returns the identifier used on the command line (e.g., "task-role").
	Name() string

	// Description is a one-line summary shown in help output.
	Description() string

	// Load resolves credentials and returns a session holding an aws.Config
	// for the source's region. Credentials are retrieved once before
	// returning so configuration problems surface here as *CredentialError.
	Load(ctx context.Context, cfg *config.Config) (*Session, error)
}

// Session is an aws.Config plus whatever the source must clean up.
type Session struct {
	// Source is the name of the source that produced the session.
	Source string
	// Region is the region model calls go to.
	Region string
	// Config carries the credentials provider and region.
	Config aws.Config

	closeOnce sync.Once
	cleanup   func() error
	closeErr  error
}

// NewSession returns a session. cleanup may be nil.
func NewSession(source string, cfg aws.Config, cleanup func() error) *Session {
	return &Session{
		Source:  source,
		Region:  cfg.Region,
		Config:  cfg,
		cleanup: cleanup,
	}
}

// Close releases temporary material. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.cleanup != nil {
			s.closeErr = s.cleanup()
		}
	})
	return s.closeErr
}
