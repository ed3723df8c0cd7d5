// Package formats holds the static registry of format-specific handlers.
//
// Handlers are keyed by exact format code (PRONOM PUID). A file whose code
// has no handler is ingested and fixity-checked at the byte level only.
//
// Handlers:
//   - wave: Broadcast WAVE essence extraction and embedded-MD5 fixity
package formats
