package secrets

import "fmt"

// UnsupportedSchemeError indicates an unrecognized URI scheme.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported secret scheme: %s", e.Scheme)
}

// InvalidReferenceError indicates a malformed secret reference.
type InvalidReferenceError struct {
	Reference string
	Reason    string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid secret reference %q: %s", e.Reference, e.Reason)
}

// BackendError wraps errors from secret backends with a suggested fix.
type BackendError struct {
	Backend   string
	Reference string
	Reason    string
	Fix       string
	Err       error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Backend, e.Reason)
	if e.Reference != "" {
		msg = fmt.Sprintf("%s (%s): %s", e.Backend, e.Reference, e.Reason)
	}
	if e.Fix != "" {
		msg += "\n\n  " + e.Fix
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
