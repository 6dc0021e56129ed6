// Package snapshot serializes attribute sets to CBOR.
//
// A snapshot records the attributes of a cms.AttributeSet in order, each
// with its encoded values. Decoding rebuilds the set through
// AttributeSet.Add, so a snapshot that repeats an OID is merged and one that
// repeats the signing-time attribute is rejected.
package snapshot
