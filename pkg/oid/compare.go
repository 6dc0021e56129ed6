package oid

// Comparator decides whether two OID strings name the same attribute type.
type Comparator interface {
	Equal(a, b string) bool
}

// FoldComparator compares OIDs with an ASCII case-insensitive ordinal
// comparison. It is the default comparator and is usable as a zero value.
type FoldComparator struct{}

// Equal reports whether a and b are equal ignoring ASCII case.
func (FoldComparator) Equal(a, b string) bool {
	return Equal(a, b)
}

// Equal reports whether a and b are equal ignoring ASCII case. Unlike
// strings.EqualFold it never applies Unicode case folding.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// IsSigningTime reports whether oid is the PKCS#9 signing-time identifier.
func IsSigningTime(c Comparator, oid string) bool {
	return c.Equal(oid, SigningTime)
}

// Compile-time interface satisfaction check.
var _ Comparator = FoldComparator{}
