package driven

import (
	"context"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// FormatIdentification is what a FormatIdentifier reports for one file.
type FormatIdentification struct {
	// Matched is false when the identifier found no format.
	Matched bool

	// FormatCode is the registry key; empty when not matched.
	FormatCode string

	// FormatName is the human-readable name; empty when not matched.
	FormatName string

	// MatchType is the identifier's confidence indicator. It is recorded
	// whether or not a match was found.
	MatchType string
}

// FormatIdentifier classifies files.
type FormatIdentifier interface {
	// Identify classifies the file at path.
	// Errors wrap domain.ErrOracle, and also domain.ErrOracleUnavailable
	// when the tool is not installed.
	Identify(ctx context.Context, path string) (*FormatIdentification, error)

	// Probe checks the tool is installed and runnable.
	Probe(ctx context.Context) error

	// Agent describes the tool for event attribution.
	Agent() domain.Agent
}

// MetadataRecord is one flat record of named fields from an extractor.
type MetadataRecord map[string]string

// Get returns the named field, or empty string if absent.
func (r MetadataRecord) Get(field string) string {
	return r[field]
}

// MetadataExtractor reads technical and descriptive metadata embedded in
// one container family.
type MetadataExtractor interface {
	// Technical returns the technical field set, including embedded-digest
	// verification state and an Errors field that is empty on success.
	Technical(ctx context.Context, path string) (MetadataRecord, error)

	// Core returns the descriptive field set.
	Core(ctx context.Context, path string) (MetadataRecord, error)

	// Agent describes the tool for event attribution.
	Agent() domain.Agent
}
