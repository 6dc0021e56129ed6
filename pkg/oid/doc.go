// Package oid provides object identifier constants and comparison helpers
// for CMS/PKCS#9 attributes.
//
// OIDs are handled in their canonical dotted-decimal string form
// ("1.2.840.113549.1.9.5"). Two OIDs name the same attribute type when they
// compare equal under an ASCII case-insensitive ordinal comparison; see
// FoldComparator. The comparison is never locale-aware.
package oid
