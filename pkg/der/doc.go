// Package der encodes CMS attribute values and attribute sets in DER.
//
// The encoders here produce the opaque value blobs stored by cms.Values and
// assemble the final SET OF Attribute structure:
//
//	Attribute ::= SEQUENCE {
//	    attrType   OBJECT IDENTIFIER,
//	    attrValues SET OF AttributeValue }
//
// Elements of every SET OF are sorted by their encodings as DER requires.
// Encoding is one-way; this package does not parse attribute values.
package der
