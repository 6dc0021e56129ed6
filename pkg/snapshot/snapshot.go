package snapshot

import (
	"errors"
	"fmt"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
)

// Version is the current snapshot format version.
const Version = 1

// ErrInvalidSnapshot is returned for structurally invalid snapshots.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the serialized form of an attribute set.
type Snapshot struct {
	Version    int               `cbor:"1,keyasint" msgpack:"version"`
	Attributes []AttributeRecord `cbor:"2,keyasint" msgpack:"attributes"`
}

// AttributeRecord is one serialized attribute.
type AttributeRecord struct {
	OID    string   `cbor:"1,keyasint" msgpack:"oid"`
	Values [][]byte `cbor:"2,keyasint" msgpack:"values"`
}

// FromSet captures the current contents of set.
func FromSet(set *cms.AttributeSet) Snapshot {
	snap := Snapshot{
		Version:    Version,
		Attributes: make([]AttributeRecord, 0, set.Len()),
	}
	for _, a := range set.All() {
		rec := AttributeRecord{OID: a.OID, Values: make([][]byte, 0, a.Values.Len())}
		for _, v := range a.Values.All() {
			rec.Values = append(rec.Values, v)
		}
		snap.Attributes = append(snap.Attributes, rec)
	}
	return snap
}

// Validate checks the snapshot structure.
func (s *Snapshot) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}
	for i, rec := range s.Attributes {
		if rec.OID == "" {
			return fmt.Errorf("%w: attribute %d has no OID", ErrInvalidSnapshot, i)
		}
		if len(rec.Values) == 0 {
			return fmt.Errorf("%w: attribute %d (%s) has no values", ErrInvalidSnapshot, i, rec.OID)
		}
		for j, v := range rec.Values {
			if len(v) == 0 {
				return fmt.Errorf("%w: attribute %d (%s) value %d is empty", ErrInvalidSnapshot, i, rec.OID, j)
			}
		}
	}
	return nil
}

// Build creates a new attribute set from the snapshot.
func (s *Snapshot) Build(opts ...cms.SetOption) (*cms.AttributeSet, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	set := cms.NewAttributeSet(opts...)
	for i, rec := range s.Attributes {
		values := make([]cms.Value, len(rec.Values))
		for j, v := range rec.Values {
			values[j] = v
		}
		if _, err := set.Add(cms.NewAttribute(rec.OID, values[0], values[1:]...)); err != nil {
			return nil, fmt.Errorf("attribute %d (%s): %w", i, rec.OID, err)
		}
	}
	return set, nil
}
