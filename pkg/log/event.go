package log

import (
	"time"
)

// Event represents an attribute-set builder event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SetID identifies the attribute set being built (UUID).
	SetID string `cbor:"2,keyasint"`

	// Level is the severity of the event.
	Level Level `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Source names the component that emitted the event (e.g. "builder",
	// "template:signer.yaml", "shell").
	Source string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Mutation *MutationEvent  `cbor:"10,keyasint,omitempty"`
	Encoding *EncodingEvent  `cbor:"11,keyasint,omitempty"`
	Error    *ErrorEventData `cbor:"12,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMutation indicates the attribute set changed.
	CategoryMutation Category = 0
	// CategoryEncoding indicates the attribute set was serialized.
	CategoryEncoding Category = 1
	// CategoryError indicates a rejected operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMutation:
		return "MUTATION"
	case CategoryEncoding:
		return "ENCODING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Operation identifies what was done to the attribute set.
type Operation uint8

const (
	// OpInsert appended a new attribute.
	OpInsert Operation = 0
	// OpMerge appended values to an existing attribute with the same OID.
	OpMerge Operation = 1
	// OpSeed appended an attribute without merge checks.
	OpSeed Operation = 2
	// OpRemove removed an attribute.
	OpRemove Operation = 3
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "INSERT"
	case OpMerge:
		return "MERGE"
	case OpSeed:
		return "SEED"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// MutationEvent captures a change to the attribute set.
type MutationEvent struct {
	// Operation is what happened.
	Operation Operation `cbor:"1,keyasint"`

	// OID is the attribute type affected.
	OID string `cbor:"2,keyasint"`

	// Index is the attribute's position after the operation (-1 for removals
	// of attributes that were not present).
	Index int `cbor:"3,keyasint"`

	// Added is the number of values contributed by the operation.
	Added int `cbor:"4,keyasint,omitempty"`

	// Total is the attribute's value count after the operation.
	Total int `cbor:"5,keyasint,omitempty"`

	// Count is the number of attributes in the set after the operation.
	Count int `cbor:"6,keyasint"`
}

// EncodingEvent captures serialization of the attribute set.
type EncodingEvent struct {
	// Format is the output format ("der", "cbor").
	Format string `cbor:"1,keyasint"`

	// Size is the encoded size in bytes.
	Size int `cbor:"2,keyasint"`

	// Attributes is the number of attributes encoded.
	Attributes int `cbor:"3,keyasint"`
}

// ErrorEventData captures a rejected operation.
type ErrorEventData struct {
	// Operation is the operation that was attempted.
	Operation Operation `cbor:"1,keyasint"`

	// OID is the attribute type involved (if any).
	OID string `cbor:"2,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"3,keyasint"`

	// Context describes what the caller was doing.
	Context string `cbor:"4,keyasint,omitempty"`
}
