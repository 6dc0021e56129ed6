// Package template loads attribute-set templates from YAML.
//
// A template names a list of attributes, each with an OID (dotted or a
// friendly name known to package oid) and typed values:
//
//	name: invoice
//	description: Signed invoice attributes
//	attributes:
//	  - oid: documentName
//	    values:
//	      - type: utf8
//	        value: Invoice 2026-0042
//	  - oid: 1.2.840.113549.1.9.5
//	    values:
//	      - type: time
//	        value: 2026-10-17T08:00:00Z
//
// Supported value types are oid, octets, hex, utf8, bmp, time and raw.
// Attributes are added through AttributeSet.Add, so an OID listed twice
// merges into one attribute and a second signing time is rejected.
package template
