package cms

import (
	"fmt"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/der"
	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// SignedAttributesBuilder assembles the authenticated attributes of a
// SignerInfo.
//
// The content-type and message-digest attributes are created by the builder
// itself and seeded without merge checks. Both are single-valued, so adding
// either again fails with ErrSingleValued. Everything else, signing time
// included, goes through AttributeSet.Add. Every mutation and every rejected
// operation is reported to the configured log.Logger.
type SignedAttributesBuilder struct {
	ls *LoggedSet
}

// NewSignedAttributesBuilder creates a builder seeded with the content-type
// attribute for contentType and the message-digest attribute for digest.
// digest is the already computed hash of the content.
func NewSignedAttributesBuilder(contentType string, digest []byte, opts ...Option) (*SignedAttributesBuilder, error) {
	if len(digest) == 0 {
		return nil, fmt.Errorf("%w: message digest", ErrNilArgument)
	}

	ct, err := der.ObjectIdentifier(contentType)
	if err != nil {
		return nil, fmt.Errorf("content type: %w", err)
	}
	md, err := der.OctetString(digest)
	if err != nil {
		return nil, fmt.Errorf("message digest: %w", err)
	}

	b := &SignedAttributesBuilder{
		ls: NewLoggedSet(nil, append([]Option{WithSource("builder")}, opts...)...),
	}
	b.ls.seed(NewAttribute(oid.ContentType, ct))
	b.ls.seed(NewAttribute(oid.MessageDigest, md))
	return b, nil
}

// ID returns the set ID used in emitted events.
func (b *SignedAttributesBuilder) ID() string {
	return b.ls.ID()
}

// Attributes returns the set being built. The builder keeps ownership;
// callers should treat it as read-only.
func (b *SignedAttributesBuilder) Attributes() *AttributeSet {
	return b.ls.Attributes()
}

// SetSigningTime adds the signing-time attribute. A second call fails with
// ErrMultipleSigningTime.
func (b *SignedAttributesBuilder) SetSigningTime(t time.Time) (int, error) {
	v, err := der.Time(t)
	if err != nil {
		b.ls.logError(log.OpInsert, oid.SigningTime, err, "SetSigningTime")
		return -1, err
	}
	return b.ls.add(NewAttribute(oid.SigningTime, v), "SetSigningTime")
}

// SetSigningTimeNow adds the signing-time attribute using the builder clock.
func (b *SignedAttributesBuilder) SetSigningTimeNow() (int, error) {
	return b.SetSigningTime(b.ls.Now())
}

// Add adds an attribute, merging it with an existing one of the same OID.
func (b *SignedAttributesBuilder) Add(attr *Attribute) (int, error) {
	if attr != nil {
		if err := b.checkSeeded(attr.OID, "Add"); err != nil {
			return -1, err
		}
	}
	return b.ls.add(attr, "Add")
}

// AddValue adds a single value under attrType.
func (b *SignedAttributesBuilder) AddValue(attrType string, value Value) (int, error) {
	if err := b.checkSeeded(attrType, "AddValue"); err != nil {
		return -1, err
	}
	return b.ls.addValue(attrType, value, "AddValue")
}

// Remove removes attr from the set.
func (b *SignedAttributesBuilder) Remove(attr *Attribute) error {
	return b.ls.Remove(attr)
}

// MarshalDER encodes the attributes as the DER SET OF Attribute that is
// signed over.
func (b *SignedAttributesBuilder) MarshalDER() ([]byte, error) {
	return b.ls.MarshalDER()
}

// MarshalImplicit encodes the attributes with the [0] IMPLICIT tag used in
// the SignerInfo structure.
func (b *SignedAttributesBuilder) MarshalImplicit() ([]byte, error) {
	return b.ls.MarshalImplicit(0)
}

// checkSeeded rejects a further value for content type or message digest
// while the seeded attribute is still present.
func (b *SignedAttributesBuilder) checkSeeded(attrType, context string) error {
	if !oid.Equal(attrType, oid.ContentType) && !oid.Equal(attrType, oid.MessageDigest) {
		return nil
	}
	if b.ls.Attributes().Index(attrType) < 0 {
		return nil
	}
	err := fmt.Errorf("%w: %s", ErrSingleValued, oid.Name(attrType))
	b.ls.logError(log.OpInsert, attrType, err, context)
	return err
}
