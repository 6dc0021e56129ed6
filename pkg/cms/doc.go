// Package cms implements the attribute sets carried by a CMS/PKCS#7
// SignerInfo.
//
// # Attribute Sets
//
// An AttributeSet is an ordered collection of attributes, each an OID plus
// an ordered list of DER-encoded values. CMS attribute sets behave like a
// mapping from OID to values but serialize as a sequence, so the set merges
// on insert: adding an attribute whose OID is already present appends its
// values to the existing attribute instead of creating a second entry.
//
//	set := cms.NewAttributeSet()
//	set.Add(cms.NewAttribute("1.2.3", v1)) // index 0
//	set.Add(cms.NewAttribute("1.2.3", v2)) // index 0, values [v1 v2]
//	set.Add(cms.NewAttribute("9.9.9", v3)) // index 1
//
// Two rules are enforced by Add:
//   - an attribute whose Values container is already held by the set is
//     rejected with ErrDuplicateItem
//   - a second signing-time attribute is rejected with ErrMultipleSigningTime
//
// OIDs are compared with an ASCII case-insensitive ordinal comparison by
// default (see oid.FoldComparator).
//
// # Building SignerInfo Attributes
//
// SignedAttributesBuilder assembles the authenticated attributes of a
// SignerInfo: content-type and message-digest are seeded at construction,
// signing time and any further attributes go through the merging Add.
//
// # Concurrency
//
// AttributeSet is not synchronized. Build it from one goroutine, then share
// it read-only. Mutating a set while iterating over All is not supported.
package cms
