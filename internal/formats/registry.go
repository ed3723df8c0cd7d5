package formats

import (
	"sort"

	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.FormatRegistry = (*Registry)(nil)

// Registry maps format codes to decomposers and fixity augmenters.
// It is filled once at start-up and only read afterwards.
type Registry struct {
	decomposers map[string]driven.BitstreamDecomposer
	augmenters  map[string]driven.FixityAugmenter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		decomposers: make(map[string]driven.BitstreamDecomposer),
		augmenters:  make(map[string]driven.FixityAugmenter),
	}
}

// RegisterDecomposer registers d for every code it reports.
// A later registration for the same code replaces the earlier one.
func (r *Registry) RegisterDecomposer(d driven.BitstreamDecomposer) {
	for _, code := range d.FormatCodes() {
		r.decomposers[code] = d
	}
}

// RegisterFixityAugmenter registers a for every code it reports.
func (r *Registry) RegisterFixityAugmenter(a driven.FixityAugmenter) {
	for _, code := range a.FormatCodes() {
		r.augmenters[code] = a
	}
}

// Decomposer returns the decomposer registered for a format code.
func (r *Registry) Decomposer(formatCode string) (driven.BitstreamDecomposer, bool) {
	d, ok := r.decomposers[formatCode]
	return d, ok
}

// FixityAugmenter returns the augmenter registered for a format code.
func (r *Registry) FixityAugmenter(formatCode string) (driven.FixityAugmenter, bool) {
	a, ok := r.augmenters[formatCode]
	return a, ok
}

// FormatCodes returns every code with at least one handler, sorted.
func (r *Registry) FormatCodes() []string {
	seen := make(map[string]struct{}, len(r.decomposers)+len(r.augmenters))
	for code := range r.decomposers {
		seen[code] = struct{}{}
	}
	for code := range r.augmenters {
		seen[code] = struct{}{}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
