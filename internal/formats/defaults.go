package formats

import (
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/formats/wave"
)

// Extractors holds the metadata extractors available to format handlers.
// A nil extractor disables the handlers that need it.
type Extractors struct {
	WAVE driven.MetadataExtractor
}

// RegisterDefaults registers all built-in handlers with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry, ex Extractors) {
	if ex.WAVE != nil {
		h := wave.New(ex.WAVE)
		r.RegisterDecomposer(h)
		r.RegisterFixityAugmenter(h)
	}
}
