// Package id provides unique identifier generation for sluice invocations.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generate creates a unique identifier with the given prefix.
// Format: <prefix>_<12 hex chars> (e.g., "inv_3f2a9c1b7d04").
// The hex is taken from a random (version 4) UUID.
func Generate(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:12]
}
