package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingest Errors.

	// ErrDuplicateIngest indicates the content location was already ingested.
	// It is recoverable: the batch skips the file and continues.
	ErrDuplicateIngest = errors.New("already ingested")

	// ErrFileUnreadable indicates a file is missing or cannot be read.
	ErrFileUnreadable = errors.New("file unreadable")

	// Oracle Errors.

	// ErrOracle indicates an external tool failed or returned output
	// that cannot be parsed.
	ErrOracle = errors.New("oracle error")

	// ErrOracleUnavailable indicates an external tool is not installed.
	// It is always wrapped together with ErrOracle.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// Store Errors.

	// ErrStore indicates a transactional failure in the object store.
	// It is always fatal to the run.
	ErrStore = errors.New("store error")

	// ErrDuplicateLocation is returned by stores when an object's content
	// location violates the uniqueness constraint.
	ErrDuplicateLocation = errors.New("content location already exists")

	// ErrSchemaVersionMismatch indicates the store was created by an
	// incompatible version of dpres.
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")
)
