package template

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/der"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// Adder accepts attributes. *cms.AttributeSet, *cms.LoggedSet and
// *cms.SignedAttributesBuilder satisfy it.
type Adder interface {
	Add(attr *cms.Attribute) (int, error)
}

// Build creates a new attribute set from the template.
func (t *Template) Build(opts ...cms.SetOption) (*cms.AttributeSet, error) {
	set := cms.NewAttributeSet(opts...)
	if err := t.AddTo(set); err != nil {
		return nil, err
	}
	return set, nil
}

// AddTo encodes every attribute of the template and adds it to dst in order.
// It stops at the first failure; attributes added before it stay in dst.
func (t *Template) AddTo(dst Adder) error {
	for _, spec := range t.Attributes {
		attr, err := spec.Attribute()
		if err != nil {
			return t.errorAt(spec, err)
		}
		if _, err := dst.Add(attr); err != nil {
			return t.errorAt(spec, err)
		}
	}
	return nil
}

func (t *Template) errorAt(spec AttributeSpec, err error) error {
	return &LoadError{
		File:    t.File,
		Line:    spec.Line,
		Message: "attribute " + spec.OID,
		Cause:   err,
	}
}

// Attribute encodes the spec into a fresh attribute.
func (a AttributeSpec) Attribute() (*cms.Attribute, error) {
	id, err := oid.Resolve(a.OID)
	if err != nil {
		return nil, err
	}
	if len(a.Values) == 0 {
		return nil, fmt.Errorf("%w: no values", cms.ErrNilArgument)
	}

	values := make([]cms.Value, len(a.Values))
	for i, v := range a.Values {
		enc, err := v.Encode()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = enc
	}
	return cms.NewAttribute(id, values[0], values[1:]...), nil
}

// Encode returns the DER encoding of the value.
func (v ValueSpec) Encode() (cms.Value, error) {
	switch strings.ToLower(v.Type) {
	case TypeOID:
		id, err := oid.Resolve(v.Value)
		if err != nil {
			return nil, err
		}
		return der.ObjectIdentifier(id)
	case TypeOctets:
		return der.OctetString([]byte(v.Value))
	case TypeHex:
		data, err := decodeHex(v.Value)
		if err != nil {
			return nil, err
		}
		return der.OctetString(data)
	case TypeUTF8:
		return der.UTF8String(v.Value)
	case TypeBMP:
		return der.BMPString(v.Value)
	case TypeTime:
		ts, err := time.Parse(time.RFC3339, v.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", v.Value, err)
		}
		return der.Time(ts)
	case TypeRaw:
		data, err := decodeHex(v.Value)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, der.ErrEmptyValue
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", v.Type)
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "\n", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return data, nil
}
