package driving

import (
	"context"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// IngestRequest describes one batch ingest run.
type IngestRequest struct {
	// Roots are files or directories to walk.
	Roots []string

	// Note is an optional description stored on the session.
	Note string

	// DryRun lists files without ingesting them.
	DryRun bool

	// KeepGoing records unreadable files and oracle failures as failed
	// results instead of ending the run. Duplicates never end the run.
	KeepGoing bool

	// Progress, if set, is called after every file.
	Progress func(domain.FileResult)
}

// IngestService registers files for preservation.
type IngestService interface {
	// Ingest registers a single file inside session and commits it.
	Ingest(ctx context.Context, path string, session domain.IngestSession) (*domain.PreservationObject, error)

	// Run ingests every file below the request roots, one transaction per file.
	// The report is returned even when the run is aborted by an error.
	Run(ctx context.Context, req IngestRequest) (*domain.IngestReport, error)
}
