package der

import (
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// Describe renders a DER-encoded value for display. Types it does not
// recognize, and malformed input, are shown as hex.
func Describe(v []byte) string {
	in := cryptobyte.String(v)
	var body cryptobyte.String
	var tag cbasn1.Tag
	if !in.ReadAnyASN1(&body, &tag) || !in.Empty() {
		return hex.EncodeToString(v)
	}

	full := cryptobyte.String(v)
	switch tag {
	case cbasn1.OBJECT_IDENTIFIER:
		var id asn1.ObjectIdentifier
		if full.ReadASN1ObjectIdentifier(&id) {
			if name := oid.Name(id.String()); name != "" {
				return "OID " + id.String() + " (" + name + ")"
			}
			return "OID " + id.String()
		}
	case cbasn1.OCTET_STRING:
		return fmt.Sprintf("OCTET STRING [%d] %s", len(body), hex.EncodeToString(body))
	case cbasn1.UTF8String:
		return fmt.Sprintf("UTF8String %q", string(body))
	case cbasn1.Tag(30):
		if len(body)%2 == 0 {
			units := make([]uint16, 0, len(body)/2)
			for i := 0; i < len(body); i += 2 {
				units = append(units, uint16(body[i])<<8|uint16(body[i+1]))
			}
			return fmt.Sprintf("BMPString %q", string(utf16.Decode(units)))
		}
	case cbasn1.UTCTime:
		var t time.Time
		if full.ReadASN1UTCTime(&t) {
			return "UTCTime " + t.UTC().Format(time.RFC3339)
		}
	case cbasn1.GeneralizedTime:
		var t time.Time
		if full.ReadASN1GeneralizedTime(&t) {
			return "GeneralizedTime " + t.UTC().Format(time.RFC3339)
		}
	case cbasn1.NULL:
		if len(body) == 0 {
			return "NULL"
		}
	}
	return hex.EncodeToString(v)
}
