package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// timeLayout is fixed-width so that stored timestamps sort lexicographically
// in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ListDue returns up to limit file objects whose latest ingestion or
// fixity-check event is before cutoff, stalest first, starting strictly
// after the cursor.
func (s *Store) ListDue(
	ctx context.Context,
	cutoff time.Time,
	after driven.DueCursor,
	limit int,
) ([]domain.DueObject, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	cursor := formatTime(after.LastChecked)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+objectColumns+`, MAX(e.event_time) AS last_checked
		FROM objects o
		JOIN events e ON e.object_id = o.object_id
		WHERE o.category = ? AND e.event_type IN (?, ?)
		GROUP BY o.object_id
		HAVING last_checked < ?
			AND (last_checked > ? OR (last_checked = ? AND o.object_id > ?))
		ORDER BY last_checked, o.object_id
		LIMIT ?
	`, domain.CategoryFile.String(),
		domain.EventIngestion.String(), domain.EventFixityCheck.String(),
		formatTime(cutoff), cursor, cursor, after.ObjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying due objects: %w", err)
	}
	defer rows.Close()

	due := make([]domain.DueObject, 0, limit)
	for rows.Next() {
		var lastChecked string
		obj, err := scanObject(dueRow{rows: rows, lastChecked: &lastChecked})
		if err != nil {
			return nil, err
		}
		t, err := parseTime(lastChecked)
		if err != nil {
			return nil, err
		}
		due = append(due, domain.DueObject{Object: *obj, LastChecked: t})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due objects: %w", err)
	}
	return due, nil
}

// dueRow appends the last_checked column to an object scan.
type dueRow struct {
	rows        *sql.Rows
	lastChecked *string
}

func (r dueRow) Scan(dest ...any) error {
	return r.rows.Scan(append(dest, r.lastChecked)...)
}

// formatTime formats t in UTC with the fixed-width layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// parseNullableTime parses a nullable stored timestamp; NULL is nil.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt64 returns nil for a nil pointer, otherwise the value.
func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// int64Ptr converts a nullable column to a pointer.
func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
