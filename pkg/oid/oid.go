package oid

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PKCS#7 content types.
const (
	Data       = "1.2.840.113549.1.7.1"
	SignedData = "1.2.840.113549.1.7.2"
)

// PKCS#9 and S/MIME attribute types.
const (
	ContentType       = "1.2.840.113549.1.9.3"
	MessageDigest     = "1.2.840.113549.1.9.4"
	SigningTime       = "1.2.840.113549.1.9.5"
	Countersignature  = "1.2.840.113549.1.9.6"
	SMIMECapabilities = "1.2.840.113549.1.9.15"

	// SigningCertificateV2 is the RFC 5035 ESS signing-certificate-v2 attribute.
	SigningCertificateV2 = "1.2.840.113549.1.9.16.2.47"

	// DocumentName and DocumentDescription are the Microsoft PKCS#9 extensions
	// used by document signing tools.
	DocumentName        = "1.3.6.1.4.1.311.88.2.1"
	DocumentDescription = "1.3.6.1.4.1.311.88.2.2"
)

// ErrInvalidOID is returned when a string is not a dotted-decimal OID.
var ErrInvalidOID = errors.New("invalid object identifier")

var names = map[string]string{
	Data:                 "data",
	SignedData:           "signedData",
	ContentType:          "contentType",
	MessageDigest:        "messageDigest",
	SigningTime:          "signingTime",
	Countersignature:     "countersignature",
	SMIMECapabilities:    "smimeCapabilities",
	SigningCertificateV2: "signingCertificateV2",
	DocumentName:         "documentName",
	DocumentDescription:  "documentDescription",
}

// Name returns the friendly name of a well-known OID, or "" if unknown.
func Name(oid string) string {
	for k, v := range names {
		if Equal(k, oid) {
			return v
		}
	}
	return ""
}

// Lookup resolves a friendly name such as "signingTime" to its dotted OID.
// Names match case-insensitively.
func Lookup(name string) (string, bool) {
	for k, v := range names {
		if Equal(v, name) {
			return k, true
		}
	}
	return "", false
}

// Resolve returns s if it is a dotted OID, or the OID registered under the
// friendly name s.
func Resolve(s string) (string, error) {
	if Valid(s) {
		return s, nil
	}
	if id, ok := Lookup(s); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOID, s)
}

// Parse converts a dotted-decimal string into an asn1.ObjectIdentifier.
// The first arc must be 0, 1 or 2 and there must be at least two arcs.
func Parse(s string) (asn1.ObjectIdentifier, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidOID)
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q needs at least two arcs", ErrInvalidOID, s)
	}

	id := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		if p == "" || (len(p) > 1 && p[0] == '0') {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
		}
		id[i] = n
	}

	if id[0] > 2 || (id[0] < 2 && id[1] > 39) {
		return nil, fmt.Errorf("%w: %q has invalid leading arcs", ErrInvalidOID, s)
	}
	return id, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) asn1.ObjectIdentifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether s is a well-formed dotted-decimal OID.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
