package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// querier is the subset of *sql.DB and *sql.Tx the reads need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// reader implements driven.ObjectReader against either the database or an
// open transaction.
type reader struct {
	q querier
}

var _ driven.ObjectReader = reader{}

// objectColumns is the column list scanned by scanObject.
const objectColumns = `o.object_id, o.identifier_type, o.identifier, o.category,
	o.digest_algorithm, o.digest, o.size_bytes, o.format_name, o.format_registry_name,
	o.format_code, o.original_name, o.content_location_type, o.content_location,
	o.relationship_type, o.relationship_subtype, o.related_object_id, o.session_id`

// GetObject retrieves an object by ID.
func (r reader) GetObject(ctx context.Context, objectID int64) (*domain.PreservationObject, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+objectColumns+" FROM objects o WHERE o.object_id = ?", objectID)
	return scanObject(row)
}

// GetObjectByLocation retrieves an object by content location.
func (r reader) GetObjectByLocation(ctx context.Context, location string) (*domain.PreservationObject, error) {
	if location == "" {
		return nil, domain.ErrNotFound
	}
	row := r.q.QueryRowContext(ctx,
		"SELECT "+objectColumns+" FROM objects o WHERE o.content_location = ?", location)
	return scanObject(row)
}

// ListEvents returns an object's events ordered by timestamp, then event ID.
func (r reader) ListEvents(ctx context.Context, objectID int64) ([]domain.Event, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT event_id, identifier_type, identifier, event_type, event_time,
			event_detail, event_outcome, object_id, agent_id
		FROM events WHERE object_id = ?
		ORDER BY event_time, event_id
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ev domain.Event
		var eventType, eventTime string
		var detail, outcome sql.NullString
		var agentID sql.NullInt64
		if err := rows.Scan(&ev.EventID, &ev.IdentifierType, &ev.Identifier, &eventType, &eventTime,
			&detail, &outcome, &ev.ObjectID, &agentID); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		if ev.Timestamp, err = parseTime(eventTime); err != nil {
			return nil, err
		}
		ev.Detail = detail.String
		ev.Outcome = outcome.String
		ev.AgentID = int64Ptr(agentID)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// ListProperties returns an object's significant properties in insertion order.
func (r reader) ListProperties(ctx context.Context, objectID int64) ([]domain.SignificantProperty, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT property_id, object_id, property_type, property_value
		FROM significant_properties WHERE object_id = ?
		ORDER BY property_id
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	var props []domain.SignificantProperty //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.SignificantProperty
		if err := rows.Scan(&p.PropertyID, &p.ObjectID, &p.Type, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	return props, nil
}

// ListRelated returns objects linked to objectID in either direction.
func (r reader) ListRelated(ctx context.Context, objectID int64) ([]domain.PreservationObject, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+objectColumns+` FROM objects o
		WHERE o.related_object_id = ?
			OR o.object_id = (SELECT related_object_id FROM objects WHERE object_id = ?)
		ORDER BY o.object_id
	`, objectID, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying related objects: %w", err)
	}
	defer rows.Close()

	var objs []domain.PreservationObject //nolint:prealloc // size unknown from query
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		if obj.ObjectID == objectID {
			continue
		}
		objs = append(objs, *obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating related objects: %w", err)
	}
	return objs, nil
}

// GetSession retrieves an ingest session by ID.
func (r reader) GetSession(ctx context.Context, sessionID int64) (*domain.IngestSession, error) {
	var session domain.IngestSession
	var startTime string
	var endTime, note sql.NullString

	err := r.q.QueryRowContext(ctx,
		"SELECT session_id, start_time, end_time, note FROM ingest_sessions WHERE session_id = ?",
		sessionID).Scan(&session.SessionID, &startTime, &endTime, &note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	if session.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if session.EndTime, err = parseNullableTime(endTime); err != nil {
		return nil, err
	}
	session.Note = note.String
	return &session, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanObject scans the columns listed in objectColumns.
func scanObject(row rowScanner) (*domain.PreservationObject, error) {
	var obj domain.PreservationObject
	var category string
	var size, relatedID, sessionID sql.NullInt64
	var formatName, registry, formatCode, originalName sql.NullString
	var locationType, location, relType, relSubType sql.NullString

	if err := row.Scan(&obj.ObjectID, &obj.IdentifierType, &obj.Identifier, &category,
		&obj.DigestAlgorithm, &obj.Digest, &size, &formatName, &registry,
		&formatCode, &originalName, &locationType, &location,
		&relType, &relSubType, &relatedID, &sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning object: %w", err)
	}

	obj.Category = domain.ObjectCategory(category)
	obj.SizeBytes = int64Ptr(size)
	obj.FormatName = formatName.String
	obj.FormatRegistryName = registry.String
	obj.FormatCode = formatCode.String
	obj.OriginalName = originalName.String
	obj.ContentLocationType = locationType.String
	obj.ContentLocation = location.String
	obj.SessionID = int64Ptr(sessionID)
	if relatedID.Valid {
		obj.Relationship = &domain.Relationship{
			Type:            relType.String,
			SubType:         relSubType.String,
			RelatedObjectID: relatedID.Int64,
		}
	}
	return &obj, nil
}

// relationshipColumns flattens an optional relationship into nullable columns.
func relationshipColumns(rel *domain.Relationship) (relType, relSubType, relID any) {
	if rel == nil {
		return nil, nil, nil
	}
	return nullString(rel.Type), nullString(rel.SubType), rel.RelatedObjectID
}
