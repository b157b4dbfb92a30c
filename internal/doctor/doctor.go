// Package doctor prints offline diagnostics for the sluice configuration and
// the two credential sources.
package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/ui"
)

// Section is one block of diagnostic output.
type Section interface {
	Name() string
	Print(w io.Writer) error
}

// Registry holds sections in print order.
type Registry struct {
	sections []Section
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a section.
func (r *Registry) Register(s Section) {
	r.sections = append(r.sections, s)
}

// RegisterSources appends the configuration section followed by one
// section per credential source.
func (r *Registry) RegisterSources(cfg *config.Config, configPath string) {
	r.Register(&ConfigSection{Config: cfg, Path: configPath})
	r.Register(&TaskRoleSection{Config: cfg})
	r.Register(&RolesAnywhereSection{Config: cfg})
}

// Sections returns the registered sections in order.
func (r *Registry) Sections() []Section {
	return r.sections
}

// Run prints every section under its heading. A failing section is
// reported inline and the rest still run. It returns the number of
// sections that failed.
func (r *Registry) Run(w io.Writer) int {
	failed := 0
	for _, s := range r.sections {
		fmt.Fprintln(w, ui.Bold(s.Name()))
		fmt.Fprintln(w, ui.Dim(strings.Repeat("─", len(s.Name()))))
		if err := s.Print(w); err != nil {
			fmt.Fprintf(w, "%s Error: %v\n", ui.FailTag(), err)
			failed++
		}
		fmt.Fprintln(w)
	}
	return failed
}
