// Package providers registers every credential source. Import it for side
// effects; each source package registers itself in init().
package providers

import (
	_ "github.com/majorcontext/sluice/internal/providers/aws" // task-role, roles-anywhere
)
