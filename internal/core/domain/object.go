package domain

// SchemaVersion is the store schema version this build reads and writes.
const SchemaVersion = "1.0.0"

// Identifier types.
const (
	IdentifierTypeUUID = "UUID"
)

// Digest algorithms.
const (
	DigestSHA256 = "SHA256"
	DigestMD5    = "MD5"
)

// FormatRegistryPRONOM is the registry name for PRONOM unique identifiers.
const FormatRegistryPRONOM = "PRONOM"

// FormatNameUnknown is recorded when the format identifier reports no match.
const FormatNameUnknown = "unknown"

// ObjectCategory classifies a preservation object.
type ObjectCategory string

// Object categories.
const (
	// CategoryFile is a file on disk, ingested directly.
	CategoryFile ObjectCategory = "file"

	// CategoryBitstream is a sub-artifact extracted from a container file.
	CategoryBitstream ObjectCategory = "bitstream"
)

// IsValid returns true if the category is recognised.
func (c ObjectCategory) IsValid() bool {
	return c == CategoryFile || c == CategoryBitstream
}

// String returns the string representation.
func (c ObjectCategory) String() string {
	return string(c)
}

// Relationship types and subtypes.
const (
	RelationshipStructural = "structural"
	SubTypeHasPart         = "has Part"
	SubTypeIsPartOf        = "is Part Of"
)

// Relationship links an object to another object.
type Relationship struct {
	// Type is the relationship family (e.g. "structural").
	Type string

	// SubType qualifies the type (e.g. "has Part").
	SubType string

	// RelatedObjectID is the object on the other side of the link.
	RelatedObjectID int64
}

// PreservationObject is one tracked artifact: a file or an extracted bitstream.
type PreservationObject struct {
	// ObjectID is assigned by the store on creation.
	ObjectID int64

	// IdentifierType names the identifier scheme (always UUID).
	IdentifierType string

	// Identifier is a globally unique opaque string.
	Identifier string

	// Category is file or bitstream.
	Category ObjectCategory

	// DigestAlgorithm names the hash used for Digest.
	DigestAlgorithm string

	// Digest is the hex-encoded fingerprint. Empty only while ingest is
	// in flight.
	Digest string

	// SizeBytes is the file size. Nil for bitstreams.
	SizeBytes *int64

	// FormatName is the human-readable format name.
	FormatName string

	// FormatRegistryName is the registry the FormatCode belongs to.
	FormatRegistryName string

	// FormatCode is the registry key (e.g. a PRONOM PUID). Empty means none.
	FormatCode string

	// OriginalName is the file's base name at ingest.
	OriginalName string

	// ContentLocationType describes the storage holding ContentLocation.
	ContentLocationType string

	// ContentLocation is the path of the content. Unique across all objects.
	ContentLocation string

	// Relationship is the optional link to a related object.
	Relationship *Relationship

	// SessionID is the ingest session that registered the object.
	SessionID *int64
}

// IsFile reports whether the object is a directly ingested file.
func (o *PreservationObject) IsFile() bool {
	return o.Category == CategoryFile
}
