package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// FixityRequest describes one fixity run.
type FixityRequest struct {
	// Interval is the staleness interval. Objects checked more recently
	// than AsOf minus Interval are skipped.
	Interval time.Duration

	// AsOf is the reference time. Zero means now.
	AsOf time.Time

	// Progress, if set, is called after every object.
	Progress func(domain.FixityResult)
}

// FixityService re-verifies stored fingerprints.
type FixityService interface {
	// Run checks all due objects, stalest first, one transaction per object.
	// The report is returned even when the run is aborted by an error.
	Run(ctx context.Context, req FixityRequest) (*domain.FixityReport, error)
}
