package domain

import "time"

// EventType is the PREMIS event type.
type EventType string

// Event types.
const (
	EventIngestion            EventType = "ingestion"
	EventDigestCalculation    EventType = "message digest calculation"
	EventFormatIdentification EventType = "format identification"
	EventFixityCheck          EventType = "fixity check"
)

// String returns the string representation.
func (t EventType) String() string {
	return string(t)
}

// Outcome is the result of a fixity check.
type Outcome string

// Fixity check outcomes.
const (
	OutcomeOK      Outcome = "OK"
	OutcomeFailed  Outcome = "Failed"
	OutcomeMissing Outcome = "Missing"
)

// String returns the string representation.
func (o Outcome) String() string {
	return string(o)
}

// Event is an immutable preservation event concerning one object.
// Events are append-only; stores never update or delete them.
type Event struct {
	// EventID is assigned by the store on creation.
	EventID int64

	// IdentifierType names the identifier scheme (always UUID).
	IdentifierType string

	// Identifier is a globally unique opaque string.
	Identifier string

	// Type is the kind of event.
	Type EventType

	// Timestamp is when the event happened, in UTC.
	Timestamp time.Time

	// Detail is free text, e.g. the tool that was run.
	Detail string

	// Outcome is optional. For fixity checks it holds an Outcome value;
	// for format identification it holds the identifier's match type.
	Outcome string

	// ObjectID is the object the event concerns.
	ObjectID int64

	// AgentID is the optional agent that produced the event.
	AgentID *int64
}

// SignificantProperty is a typed key/value attached to exactly one object.
type SignificantProperty struct {
	PropertyID int64
	ObjectID   int64
	Type       string
	Value      string
}

// Significant property types.
const (
	PropertyHasEmbeddedDigest = "HasEmbeddedDigest"
	PropertyDuration          = "Duration"
	PropertyChannels          = "Channels"
	PropertySampleRate        = "SampleRate"
	PropertyBitPerSample      = "BitPerSample"
	PropertyOrigination       = "Origination"
	PropertyDescription       = "Description"
	PropertyCreationDate      = "CreationDate"
	PropertyTitle             = "Title"
)

// Agent identifies the tool and version that produced an event.
type Agent struct {
	AgentID        int64
	IdentifierType string
	Identifier     string
	Name           string
	Type           string
	Version        string
}

// AgentTypeSoftware is the agent type for programs.
const AgentTypeSoftware = "software"
