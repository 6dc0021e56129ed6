package cms

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// AttributeSet is an ordered, OID-unique collection of attributes.
// It is not safe for concurrent mutation.
type AttributeSet struct {
	attrs []*Attribute
	cmp   oid.Comparator
}

// SetOption configures an AttributeSet.
type SetOption func(*AttributeSet)

// WithComparator replaces the OID comparator. The default compares
// dotted strings ignoring ASCII case.
func WithComparator(c oid.Comparator) SetOption {
	return func(s *AttributeSet) {
		if c != nil {
			s.cmp = c
		}
	}
}

// NewAttributeSet creates an empty attribute set.
func NewAttributeSet(opts ...SetOption) *AttributeSet {
	s := &AttributeSet{cmp: oid.FoldComparator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAttributeSetWith creates a set holding attr. No merge checks are
// applied; the set is assumed fresh. A nil attr yields an empty set.
func NewAttributeSetWith(attr *Attribute, opts ...SetOption) *AttributeSet {
	s := NewAttributeSet(opts...)
	if attr != nil {
		s.unmerged().append(attr)
	}
	return s
}

// AddValue wraps value in a new single-value attribute of type attrType and
// adds it with Add.
func (s *AttributeSet) AddValue(attrType string, value Value) (int, error) {
	if len(value) == 0 {
		return -1, fmt.Errorf("%w: value", ErrNilArgument)
	}
	return s.Add(NewAttribute(attrType, value))
}

// Add inserts attr, merging it into an existing attribute of the same OID.
//
// The existing attributes are scanned in order. An attribute whose Values
// container is already held by the set fails with ErrDuplicateItem. The
// first attribute with an equal OID absorbs attr's values, appended in
// order, and its index is returned; for the signing-time OID this fails with
// ErrMultipleSigningTime instead. With no match attr is appended and its new
// index returned. On error the set is unchanged.
func (s *AttributeSet) Add(attr *Attribute) (int, error) {
	if attr == nil || attr.Values == nil {
		return -1, fmt.Errorf("%w: attribute", ErrNilArgument)
	}

	for i, existing := range s.attrs {
		// Re-adding an attribute the set already holds would append the
		// container onto itself.
		if existing.Values == attr.Values {
			return -1, ErrDuplicateItem
		}

		if !s.cmp.Equal(existing.OID, attr.OID) {
			continue
		}

		if oid.IsSigningTime(s.cmp, attr.OID) {
			return -1, ErrMultipleSigningTime
		}

		existing.Values.items = append(existing.Values.items, attr.Values.items...)
		return i, nil
	}

	s.attrs = append(s.attrs, attr)
	return len(s.attrs) - 1, nil
}

// unmergedAppender appends attributes without the OID-uniqueness and
// signing-time checks of Add. Only this package can obtain one; callers
// must already guarantee the attribute is unique.
type unmergedAppender struct {
	s *AttributeSet
}

func (s *AttributeSet) unmerged() unmergedAppender {
	return unmergedAppender{s: s}
}

func (u unmergedAppender) append(attr *Attribute) int {
	u.s.attrs = append(u.s.attrs, attr)
	return len(u.s.attrs) - 1
}

// Remove deletes the first element that is attr (pointer identity).
// Removing an attribute that is not in the set is a no-op.
func (s *AttributeSet) Remove(attr *Attribute) error {
	if attr == nil {
		return fmt.Errorf("%w: attribute", ErrNilArgument)
	}
	for i, existing := range s.attrs {
		if existing == attr {
			s.attrs = slices.Delete(s.attrs, i, i+1)
			return nil
		}
	}
	return nil
}

// Get returns the attribute at index i.
func (s *AttributeSet) Get(i int) (*Attribute, error) {
	if i < 0 || i >= len(s.attrs) {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, i, len(s.attrs))
	}
	return s.attrs[i], nil
}

// Index returns the index of the first attribute whose OID equals
// attrType, or -1.
func (s *AttributeSet) Index(attrType string) int {
	for i, a := range s.attrs {
		if s.cmp.Equal(a.OID, attrType) {
			return i
		}
	}
	return -1
}

// Len returns the number of attributes.
func (s *AttributeSet) Len() int {
	return len(s.attrs)
}

// All iterates over the attributes in insertion order. Each call reads the
// live set; it is not a snapshot, and the set must not be mutated while an
// iteration is in progress.
func (s *AttributeSet) All() iter.Seq2[int, *Attribute] {
	return func(yield func(int, *Attribute) bool) {
		for i := 0; i < len(s.attrs); i++ {
			if !yield(i, s.attrs[i]) {
				return
			}
		}
	}
}

// CopyTo copies the attributes into dst starting at index start.
//
// start must address a slot of dst, except that start 0 is accepted for an
// empty dst. dst must have room for Len() attributes from start.
func (s *AttributeSet) CopyTo(dst []*Attribute, start int) error {
	if dst == nil {
		return fmt.Errorf("%w: destination", ErrNilArgument)
	}
	if !(start == 0 && len(dst) == 0) && (start < 0 || start >= len(dst)) {
		return fmt.Errorf("%w: start %d (destination length %d)", ErrIndexOutOfRange, start, len(dst))
	}
	if start > len(dst)-len(s.attrs) {
		return fmt.Errorf("%w: need %d slots from %d, destination length %d",
			ErrInsufficientSpace, len(s.attrs), start, len(dst))
	}
	copy(dst[start:], s.attrs)
	return nil
}
