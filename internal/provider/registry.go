package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	sources = make(map[string]CredentialSource)
	aliases = make(map[string]string) // alias -> canonical name
)

// Register adds a source to the registry.
func Register(s CredentialSource) {
	mu.Lock()
	defer mu.Unlock()
	sources[s.Name()] = s
}

// RegisterAlias registers an alternative name for a source, so that
// Get("ecs") can return the "task-role" source.
func RegisterAlias(alias, canonical string) {
	mu.Lock()
	defer mu.Unlock()
	aliases[alias] = canonical
}

// ResolveName returns the canonical source name for a given name or alias.
// Unknown names are returned as-is.
func ResolveName(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Get returns a source by name or alias, or nil if not found.
func Get(name string) CredentialSource {
	mu.RLock()
	defer mu.RUnlock()
	if s, ok := sources[name]; ok {
		return s
	}
	if canonical, ok := aliases[name]; ok {
		return sources[canonical]
	}
	return nil
}

// Lookup is Get with an error listing the valid names.
func Lookup(name string) (CredentialSource, error) {
	if s := Get(name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownSource, name, strings.Join(Names(), ", "))
}

// All returns all registered sources sorted by name.
func All() []CredentialSource {
	mu.RLock()
	defer mu.RUnlock()
	result := make([]CredentialSource, 0, len(sources))
	for _, s := range sources {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the names of all registered sources, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all registered sources and aliases. For testing only.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	sources = make(map[string]CredentialSource)
	aliases = make(map[string]string)
}
