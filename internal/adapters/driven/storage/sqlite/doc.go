// Package sqlite provides the SQLite implementation of the preservation
// object store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database holds objects, events, significant
// properties, agents and ingest sessions.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. The store_info table carries the schema version
// stamped by Create; Open refuses stores whose version does not share this
// build's major and minor version.
//
// # Uniqueness
//
// The content_location column is UNIQUE. A second insert of the same path
// is reported as domain.ErrDuplicateLocation, which is how the ingest
// coordinator detects duplicates. Bitstreams store NULL there.
//
// # Timestamps
//
// Timestamps are stored as fixed-width UTC text, so ordering by the column
// is ordering by time.
package sqlite
