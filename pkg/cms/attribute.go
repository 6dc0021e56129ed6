package cms

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/cmsattr/cmsattr-go/pkg/der"
)

// Value is a single DER-encoded AttributeValue. The set never inspects it.
type Value []byte

// Values is the ordered value list of one attribute.
//
// Each Values is a distinct container with its own identity: the set
// compares containers by pointer when it rejects re-added attributes.
// ID exposes a creation-time tag for the same identity, suitable for logs.
type Values struct {
	id    uuid.UUID
	items []Value
}

// NewValues creates a value list holding vs in order.
func NewValues(vs ...Value) *Values {
	return &Values{
		id:    uuid.New(),
		items: slices.Clone(vs),
	}
}

// ID returns the identity tag assigned when the list was created.
func (v *Values) ID() uuid.UUID {
	return v.id
}

// Len returns the number of values.
func (v *Values) Len() int {
	return len(v.items)
}

// At returns the value at index i. It panics if i is out of range.
func (v *Values) At(i int) Value {
	return v.items[i]
}

// Append adds a value to the end of the list.
func (v *Values) Append(val Value) error {
	if len(val) == 0 {
		return fmt.Errorf("%w: value", ErrNilArgument)
	}
	v.items = append(v.items, val)
	return nil
}

// All iterates over the values in order.
func (v *Values) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i := 0; i < len(v.items); i++ {
			if !yield(i, v.items[i]) {
				return
			}
		}
	}
}

// Slice returns a copy of the values.
func (v *Values) Slice() []Value {
	return slices.Clone(v.items)
}

func (v *Values) raw() [][]byte {
	out := make([][]byte, len(v.items))
	for i, val := range v.items {
		out[i] = val
	}
	return out
}

// Attribute is one entry of an attribute set: an attribute type and its
// values.
type Attribute struct {
	// OID is the attribute type in dotted-decimal form.
	OID string

	// Values holds the encoded values, in insertion order.
	Values *Values
}

// NewAttribute creates an attribute with at least one value.
func NewAttribute(oid string, first Value, more ...Value) *Attribute {
	values := NewValues(first)
	values.items = append(values.items, more...)
	return &Attribute{OID: oid, Values: values}
}

// MarshalDER encodes the attribute as SEQUENCE { OID, SET OF value }.
func (a *Attribute) MarshalDER() ([]byte, error) {
	if a == nil || a.Values == nil {
		return nil, ErrNilArgument
	}
	return der.Attribute(a.OID, a.Values.raw())
}
