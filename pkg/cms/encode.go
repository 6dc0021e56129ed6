package cms

import (
	"fmt"

	"github.com/cmsattr/cmsattr-go/pkg/der"
)

// MarshalDER encodes the set as a DER SET OF Attribute. This is the form
// signed over when the set holds a SignerInfo's authenticated attributes.
func (s *AttributeSet) MarshalDER() ([]byte, error) {
	elems, err := s.encodeElements()
	if err != nil {
		return nil, err
	}
	return der.SetOf(elems)
}

// MarshalImplicit encodes the set with the context-specific tag [tag], as it
// appears inside a SignerInfo (0 for signed, 1 for unsigned attributes).
func (s *AttributeSet) MarshalImplicit(tag uint8) ([]byte, error) {
	elems, err := s.encodeElements()
	if err != nil {
		return nil, err
	}
	return der.Implicit(tag, elems)
}

func (s *AttributeSet) encodeElements() ([][]byte, error) {
	elems := make([][]byte, 0, len(s.attrs))
	for i, a := range s.attrs {
		enc, err := a.MarshalDER()
		if err != nil {
			return nil, fmt.Errorf("attribute %d (%s): %w", i, a.OID, err)
		}
		elems = append(elems, enc)
	}
	return elems, nil
}
