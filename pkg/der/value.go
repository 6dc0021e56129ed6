package der

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// Encoding errors.
var (
	ErrEmptyValue = errors.New("empty attribute value")
	ErrEncode     = errors.New("DER encoding failed")
)

// utcTimeMin and utcTimeMax bound the years RFC 5652 section 11.3 encodes
// as UTCTime. Outside this range GeneralizedTime is used.
var (
	utcTimeMin = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	utcTimeMax = time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ObjectIdentifier encodes a dotted-decimal OID as an OBJECT IDENTIFIER.
func ObjectIdentifier(s string) ([]byte, error) {
	id, err := oid.Parse(s)
	if err != nil {
		return nil, err
	}
	var b cryptobyte.Builder
	b.AddASN1ObjectIdentifier(id)
	return finish(&b)
}

// OctetString encodes data as an OCTET STRING.
func OctetString(data []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1OctetString(data)
	return finish(&b)
}

// UTF8String encodes s as a UTF8String.
func UTF8String(s string) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.UTF8String, func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(s))
	})
	return finish(&b)
}

// BMPString encodes s as a BMPString (UTF-16BE), the form used by the
// Microsoft document name and description attributes.
func BMPString(s string) ([]byte, error) {
	for _, r := range s {
		if r > 0xFFFF {
			return nil, fmt.Errorf("%w: rune %U outside the BMP", ErrEncode, r)
		}
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.Tag(30), func(b *cryptobyte.Builder) {
		for _, r := range s {
			b.AddUint16(uint16(r))
		}
	})
	return finish(&b)
}

// Time encodes t as the signing-time Time CHOICE: UTCTime for years
// 1950 through 2049, GeneralizedTime otherwise. Fractional seconds are
// dropped and the time is converted to UTC.
func Time(t time.Time) ([]byte, error) {
	t = t.UTC().Truncate(time.Second)

	var b cryptobyte.Builder
	if !t.Before(utcTimeMin) && t.Before(utcTimeMax) {
		b.AddASN1UTCTime(t)
	} else {
		b.AddASN1GeneralizedTime(t)
	}
	return finish(&b)
}

func finish(b *cryptobyte.Builder) ([]byte, error) {
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}
