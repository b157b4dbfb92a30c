package provider

import (
	"errors"
	"fmt"
)

// ErrUnknownSource is returned by Lookup when no source is registered under
// the requested name.
var ErrUnknownSource = errors.New("unknown credential source")

// CredentialError wraps source-specific credential failures with actionable
// guidance.
type CredentialError struct {
	Source string
	Cause  error
	Hint   string
}

func (e *CredentialError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("credentials %s: %v\n\n%s", e.Source, e.Cause, e.Hint)
	}
	return fmt.Sprintf("credentials %s: %v", e.Source, e.Cause)
}

func (e *CredentialError) Unwrap() error {
	return e.Cause
}
