package domain

import "time"

// IngestSession groups all objects registered by one ingest run.
type IngestSession struct {
	SessionID int64
	StartTime time.Time

	// EndTime is the time of the last successful file commit.
	// Nil until at least one file is committed.
	EndTime *time.Time

	Note string
}

// FileStatus is the typed outcome of ingesting one file.
type FileStatus string

// File statuses.
const (
	// FileIngested means the file and its events were committed.
	FileIngested FileStatus = "ingested"

	// FileDuplicate means the path was already registered.
	FileDuplicate FileStatus = "duplicate"

	// FileFailed means the file could not be ingested.
	FileFailed FileStatus = "failed"

	// FileListed means the file was only listed (dry run).
	FileListed FileStatus = "listed"
)

// FileResult is produced for every file visited by an ingest run.
type FileResult struct {
	Path     string
	Status   FileStatus
	ObjectID int64
	Err      error
}

// IngestReport summarises an ingest run.
type IngestReport struct {
	Session *IngestSession
	Results []FileResult
}

// Count returns how many results have the given status.
func (r *IngestReport) Count(status FileStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
