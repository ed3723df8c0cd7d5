// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ObjectStore: Transactional persistence of objects, events, properties,
//     sessions and agents
//   - FormatIdentifier: Maps a file path to a format code (fido)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These are looked up per format code; absence is never an error:
//
//   - MetadataExtractor: Technical metadata for one container family (bwfmetaedit)
//   - BitstreamDecomposer: Extracts embedded essence at ingest
//   - FixityAugmenter: Re-verifies embedded essence after a digest mismatch
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or format package
package driven
