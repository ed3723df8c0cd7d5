package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// ObjectReader exposes the explicit reads over the preservation graph.
// There is no lazy traversal: every cross-entity read is a call here.
type ObjectReader interface {
	// GetObject retrieves an object by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetObject(ctx context.Context, objectID int64) (*domain.PreservationObject, error)

	// GetObjectByLocation retrieves an object by content location.
	// Returns domain.ErrNotFound if it does not exist.
	GetObjectByLocation(ctx context.Context, location string) (*domain.PreservationObject, error)

	// ListEvents returns an object's events ordered by timestamp, then event ID.
	ListEvents(ctx context.Context, objectID int64) ([]domain.Event, error)

	// ListProperties returns an object's significant properties in insertion order.
	ListProperties(ctx context.Context, objectID int64) ([]domain.SignificantProperty, error)

	// ListRelated returns objects whose relationship points at objectID,
	// plus the object objectID's own relationship points at.
	ListRelated(ctx context.Context, objectID int64) ([]domain.PreservationObject, error)

	// GetSession retrieves an ingest session by ID.
	GetSession(ctx context.Context, sessionID int64) (*domain.IngestSession, error)
}

// ObjectTx is one unit of work against the store. Nothing written through
// it is visible outside until Commit; Rollback discards everything,
// including objects created earlier in the same transaction.
type ObjectTx interface {
	ObjectReader

	// CreateObject inserts an object and sets its ObjectID.
	// Returns domain.ErrDuplicateLocation if the content location is taken.
	CreateObject(ctx context.Context, obj *domain.PreservationObject) error

	// UpdateObject rewrites the mutable columns of an existing object.
	UpdateObject(ctx context.Context, obj *domain.PreservationObject) error

	// AppendEvent inserts an event and sets its EventID.
	AppendEvent(ctx context.Context, event *domain.Event) error

	// AddProperty inserts a significant property and sets its PropertyID.
	AddProperty(ctx context.Context, prop *domain.SignificantProperty) error

	// CreateSession inserts an ingest session and sets its SessionID.
	CreateSession(ctx context.Context, session *domain.IngestSession) error

	// TouchSession sets a session's end time.
	TouchSession(ctx context.Context, sessionID int64, endTime time.Time) error

	// EnsureAgent returns the ID of the agent with the same name and
	// version, creating it if needed.
	EnsureAgent(ctx context.Context, agent *domain.Agent) (int64, error)

	// Commit makes the unit of work visible.
	Commit() error

	// Rollback discards the unit of work. Safe to call after Commit.
	Rollback() error
}

// DueCursor is the keyset position of the last object yielded by
// ListDue. The zero value starts at the beginning.
type DueCursor struct {
	LastChecked time.Time
	ObjectID    int64
}

// ObjectStore is the transactional repository for preservation metadata.
type ObjectStore interface {
	ObjectReader

	// Begin starts a unit of work.
	Begin(ctx context.Context) (ObjectTx, error)

	// ListDue returns up to limit file objects whose last ingestion or
	// fixity-check event is strictly before cutoff, ordered by that time
	// and then object ID, starting strictly after the cursor.
	ListDue(ctx context.Context, cutoff time.Time, after DueCursor, limit int) ([]domain.DueObject, error)

	// SchemaVersion returns the version marker written when the store was created.
	SchemaVersion(ctx context.Context) (string, error)
}
