// Package domain defines the core preservation entities for dpres.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PreservationObject: A tracked file or an extracted bitstream
//   - Event: An append-only preservation event about one object
//   - SignificantProperty: A typed key/value describing an object
//   - IngestSession: The batch context of one ingest run
//   - Agent: The software that produced an event
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
