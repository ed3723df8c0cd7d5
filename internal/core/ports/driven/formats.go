package driven

import (
	"context"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// BitstreamDecomposer expands one container format at ingest.
type BitstreamDecomposer interface {
	// FormatCodes returns the format codes this decomposer handles.
	FormatCodes() []string

	// Decompose may create a child bitstream object, properties and events
	// for parent inside tx. It may update parent; the caller persists it.
	// Structural problems reported by the extractor are logged and end
	// decomposition without error. Errors wrap domain.ErrOracle or
	// domain.ErrStore.
	Decompose(ctx context.Context, tx ObjectTx, parent *domain.PreservationObject) error
}

// FixityAugmenter re-verifies the embedded essence of a container whose
// top-level digest no longer matches.
type FixityAugmenter interface {
	// FormatCodes returns the format codes this augmenter handles.
	FormatCodes() []string

	// VerifyBitstreams appends fixity-check events to the bitstream objects
	// related to parent. It never records anything on parent itself.
	// Only store failures are returned; oracle problems are logged and the
	// related check is skipped.
	VerifyBitstreams(ctx context.Context, tx ObjectTx, parent *domain.PreservationObject) error
}

// FormatRegistry maps format codes to format-specific handlers.
type FormatRegistry interface {
	// Decomposer returns the decomposer registered for a format code.
	Decomposer(formatCode string) (BitstreamDecomposer, bool)

	// FixityAugmenter returns the augmenter registered for a format code.
	FixityAugmenter(formatCode string) (FixityAugmenter, bool)
}
