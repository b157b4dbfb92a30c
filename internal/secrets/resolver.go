// Package secrets resolves secret references such as
// secretsmanager://us-east-1/sluice/client-key into their plaintext values,
// and stages resolved PEM material on disk for tools that only read files.
package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Resolver resolves a secret reference to its plaintext value.
type Resolver interface {
	// Scheme returns the URI scheme this resolver handles (e.g., "ssm").
	Scheme() string

	// Resolve fetches the secret value for the given reference.
	// The reference is the full URI (e.g., "ssm:///sluice/certificate").
	Resolve(ctx context.Context, reference string) (string, error)
}

var (
	resolvers = make(map[string]Resolver)
	mu        sync.RWMutex
)

// Register adds a resolver to the registry.
func Register(r Resolver) {
	mu.Lock()
	defer mu.Unlock()
	resolvers[r.Scheme()] = r
}

// IsReference reports whether s uses the scheme of a registered resolver.
// Anything else, including plain file paths, is not a reference.
func IsReference(s string) bool {
	scheme := parseScheme(s)
	if scheme == "" {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := resolvers[scheme]
	return ok
}

// Resolve dispatches to the appropriate resolver based on URI scheme.
func Resolve(ctx context.Context, reference string) (string, error) {
	scheme := parseScheme(reference)
	if scheme == "" {
		return "", &InvalidReferenceError{Reference: reference, Reason: "missing scheme"}
	}

	mu.RLock()
	r, ok := resolvers[scheme]
	mu.RUnlock()

	if !ok {
		return "", &UnsupportedSchemeError{Scheme: scheme}
	}

	return r.Resolve(ctx, reference)
}

// Stage returns a file path holding the material for ref. Plain paths are
// returned unchanged. References are resolved and written to dir/name with
// mode 0600; the caller owns dir and removes it.
func Stage(ctx context.Context, ref, dir, name string) (string, error) {
	if !IsReference(ref) {
		return ref, nil
	}

	value, err := Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(value, "\n") {
		value += "\n"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// parseScheme extracts the scheme from a URI (e.g., "ssm" from "ssm:///path").
func parseScheme(ref string) string {
	idx := strings.Index(ref, "://")
	if idx < 1 {
		return ""
	}
	return ref[:idx]
}

// clearRegistry removes all registered resolvers. For testing only.
func clearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	resolvers = make(map[string]Resolver)
}
