package der

import (
	"bytes"
	"fmt"
	"slices"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// Attribute encodes one attribute as SEQUENCE { OID, SET OF value }.
// Each value must already be a complete DER element.
func Attribute(attrType string, values [][]byte) ([]byte, error) {
	id, err := oid.Parse(attrType)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: %s value %d", ErrEmptyValue, attrType, i)
		}
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(id)
		addSetOf(b, cbasn1.SET, values)
	})
	return finish(&b)
}

// SetOf encodes elements as a DER SET OF, sorting them by encoding.
func SetOf(elements [][]byte) ([]byte, error) {
	return tagged(cbasn1.SET, elements)
}

// Implicit encodes elements as a SET OF carrying the context-specific
// constructed tag [n] instead of the universal SET tag. SignerInfo uses
// [0] IMPLICIT for signed attributes and [1] IMPLICIT for unsigned ones.
func Implicit(n uint8, elements [][]byte) ([]byte, error) {
	return tagged(cbasn1.Tag(n).ContextSpecific().Constructed(), elements)
}

func tagged(tag cbasn1.Tag, elements [][]byte) ([]byte, error) {
	var b cryptobyte.Builder
	addSetOf(&b, tag, elements)
	return finish(&b)
}

// addSetOf writes elements under tag in DER order without mutating the
// caller's slice.
func addSetOf(b *cryptobyte.Builder, tag cbasn1.Tag, elements [][]byte) {
	sorted := slices.Clone(elements)
	slices.SortStableFunc(sorted, bytes.Compare)

	b.AddASN1(tag, func(b *cryptobyte.Builder) {
		for _, e := range sorted {
			b.AddBytes(e)
		}
	})
}
