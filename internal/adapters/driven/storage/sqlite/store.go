package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// schemaVersionKey is the store_info key holding the schema version.
const schemaVersionKey = "schema_version"

// Store is a SQLite-backed preservation metadata store.
type Store struct {
	reader
	db   *sql.DB
	path string
}

var _ driven.ObjectStore = (*Store)(nil)

// Create creates the store at path, or brings an existing store's schema
// up to date, and stamps the schema version on first creation.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if err := s.migrate(migrations.FS); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO store_info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, schemaVersionKey, domain.SchemaVersion); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("stamping schema version: %w", err)
	}

	if err := s.checkVersion(context.Background()); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing store. It fails if the store has not been created
// or was created by an incompatible schema version.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no store at %s (run dpres init)", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("checking database: %w", err)
	}

	s, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if err := s.checkVersion(context.Background()); err != nil {
		s.db.Close()
		return nil, err
	}

	if err := s.migrate(migrations.FS); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func openDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer; transactions are short and sequential.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newStoreWithDB(db, path), nil
}

// newStoreWithDB wraps an already opened database.
func newStoreWithDB(db *sql.DB, path string) *Store {
	return &Store{
		reader: reader{q: db},
		db:     db,
		path:   path,
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the version stamped when the store was created.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM store_info WHERE key = ?", schemaVersionKey).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: store has no schema version", domain.ErrSchemaVersionMismatch)
		}
		if isMissingTable(err) {
			return "", fmt.Errorf("%w: store has no schema version", domain.ErrSchemaVersionMismatch)
		}
		return "", fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// checkVersion accepts stores whose schema shares this build's major and
// minor version.
func (s *Store) checkVersion(ctx context.Context) error {
	stored, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	return compatible(stored, domain.SchemaVersion)
}

func compatible(stored, current string) error {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("parsing schema version %q: %w", current, err)
	}
	got, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("%w: unreadable version %q", domain.ErrSchemaVersionMismatch, stored)
	}
	c, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", cur.Major(), cur.Minor()))
	if err != nil {
		return fmt.Errorf("building version constraint: %w", err)
	}
	if !c.Check(got) {
		return fmt.Errorf("%w: store is %s, dpres expects %s", domain.ErrSchemaVersionMismatch, stored, current)
	}
	return nil
}

// Begin starts a unit of work.
func (s *Store) Begin(ctx context.Context) (driven.ObjectTx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &tx{reader: reader{q: sqlTx}, tx: sqlTx}, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Transaction ====================

// tx implements driven.ObjectTx over a database transaction.
type tx struct {
	reader
	tx *sql.Tx
}

var _ driven.ObjectTx = (*tx)(nil)

// CreateObject inserts an object and sets its ObjectID.
func (t *tx) CreateObject(ctx context.Context, obj *domain.PreservationObject) error {
	if obj == nil || !obj.Category.IsValid() {
		return domain.ErrInvalidInput
	}

	relType, relSubType, relID := relationshipColumns(obj.Relationship)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO objects (
			identifier_type, identifier, category, digest_algorithm, digest,
			size_bytes, format_name, format_registry_name, format_code, original_name,
			content_location_type, content_location,
			relationship_type, relationship_subtype, related_object_id, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, obj.IdentifierType, obj.Identifier, obj.Category.String(), obj.DigestAlgorithm, obj.Digest,
		nullInt64(obj.SizeBytes), nullString(obj.FormatName), nullString(obj.FormatRegistryName),
		nullString(obj.FormatCode), nullString(obj.OriginalName),
		nullString(obj.ContentLocationType), nullString(obj.ContentLocation),
		relType, relSubType, relID, nullInt64(obj.SessionID))
	if err != nil {
		if isUniqueViolation(err, "content_location") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLocation, obj.ContentLocation)
		}
		return fmt.Errorf("inserting object: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading object id: %w", err)
	}
	obj.ObjectID = id
	return nil
}

// UpdateObject rewrites the mutable columns of an existing object.
func (t *tx) UpdateObject(ctx context.Context, obj *domain.PreservationObject) error {
	if obj == nil {
		return domain.ErrInvalidInput
	}

	relType, relSubType, relID := relationshipColumns(obj.Relationship)
	res, err := t.tx.ExecContext(ctx, `
		UPDATE objects SET
			digest_algorithm = ?, digest = ?, size_bytes = ?,
			format_name = ?, format_registry_name = ?, format_code = ?, original_name = ?,
			content_location_type = ?,
			relationship_type = ?, relationship_subtype = ?, related_object_id = ?
		WHERE object_id = ?
	`, obj.DigestAlgorithm, obj.Digest, nullInt64(obj.SizeBytes),
		nullString(obj.FormatName), nullString(obj.FormatRegistryName),
		nullString(obj.FormatCode), nullString(obj.OriginalName),
		nullString(obj.ContentLocationType),
		relType, relSubType, relID, obj.ObjectID)
	if err != nil {
		return fmt.Errorf("updating object: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating object: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendEvent inserts an event and sets its EventID.
func (t *tx) AppendEvent(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return domain.ErrInvalidInput
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO events (
			identifier_type, identifier, event_type, event_time,
			event_detail, event_outcome, object_id, agent_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.IdentifierType, event.Identifier, event.Type.String(), formatTime(event.Timestamp),
		nullString(event.Detail), nullString(event.Outcome), event.ObjectID, nullInt64(event.AgentID))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading event id: %w", err)
	}
	event.EventID = id
	return nil
}

// AddProperty inserts a significant property and sets its PropertyID.
func (t *tx) AddProperty(ctx context.Context, prop *domain.SignificantProperty) error {
	if prop == nil {
		return domain.ErrInvalidInput
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO significant_properties (object_id, property_type, property_value)
		VALUES (?, ?, ?)
	`, prop.ObjectID, prop.Type, prop.Value)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading property id: %w", err)
	}
	prop.PropertyID = id
	return nil
}

// CreateSession inserts an ingest session and sets its SessionID.
func (t *tx) CreateSession(ctx context.Context, session *domain.IngestSession) error {
	if session == nil {
		return domain.ErrInvalidInput
	}

	var endTime any
	if session.EndTime != nil {
		endTime = formatTime(*session.EndTime)
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO ingest_sessions (start_time, end_time, note) VALUES (?, ?, ?)
	`, formatTime(session.StartTime), endTime, nullString(session.Note))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}
	session.SessionID = id
	return nil
}

// TouchSession sets a session's end time.
func (t *tx) TouchSession(ctx context.Context, sessionID int64, endTime time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE ingest_sessions SET end_time = ? WHERE session_id = ?", formatTime(endTime), sessionID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureAgent returns the ID of the agent with the same name and version,
// creating it if needed.
func (t *tx) EnsureAgent(ctx context.Context, agent *domain.Agent) (int64, error) {
	if agent == nil || agent.Name == "" {
		return 0, domain.ErrInvalidInput
	}

	var id int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT agent_id FROM agents WHERE name = ? AND version = ?", agent.Name, agent.Version).Scan(&id)
	switch {
	case err == nil:
		agent.AgentID = id
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("looking up agent: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO agents (identifier_type, identifier, name, agent_type, version)
		VALUES (?, ?, ?, ?, ?)
	`, agent.IdentifierType, agent.Identifier, agent.Name, agent.Type, agent.Version)
	if err != nil {
		return 0, fmt.Errorf("inserting agent: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading agent id: %w", err)
	}
	agent.AgentID = id
	return id, nil
}

// Commit makes the unit of work visible.
func (t *tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Rollback discards the unit of work. Safe to call after Commit.
func (t *tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the named column.
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(sqliteErr.Error(), column)
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// isMissingTable reports whether err is a query against a table that does
// not exist, as happens for databases not created by dpres.
func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}
