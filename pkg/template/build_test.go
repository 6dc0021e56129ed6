package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

func TestValueSpecEncode(t *testing.T) {
	tests := []struct {
		spec ValueSpec
		want []byte
	}{
		{ValueSpec{TypeUTF8, "hi"}, []byte{0x0c, 0x02, 'h', 'i'}},
		{ValueSpec{TypeOctets, "ab"}, []byte{0x04, 0x02, 'a', 'b'}},
		{ValueSpec{TypeHex, "01:02"}, []byte{0x04, 0x02, 0x01, 0x02}},
		{ValueSpec{TypeRaw, "05 00"}, []byte{0x05, 0x00}},
		{ValueSpec{TypeBMP, "A"}, []byte{0x1e, 0x02, 0x00, 'A'}},
		{ValueSpec{"OID", "data"}, []byte{0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x07, 0x01}},
		{ValueSpec{TypeTime, "2026-10-17T08:00:00Z"}, append([]byte{0x17, 0x0d}, "261017080000Z"...)},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Type, func(t *testing.T) {
			got, err := tt.spec.Encode()
			require.NoError(t, err)
			assert.Equal(t, cms.Value(tt.want), got)
		})
	}
}

func TestValueSpecEncodeErrors(t *testing.T) {
	for _, spec := range []ValueSpec{
		{"unknown", "x"},
		{TypeHex, "zz"},
		{TypeRaw, ""},
		{TypeTime, "yesterday"},
		{TypeOID, "not-an-oid"},
	} {
		t.Run(spec.Type+"/"+spec.Value, func(t *testing.T) {
			_, err := spec.Encode()
			assert.Error(t, err)
		})
	}
}

func TestBuildMergesRepeatedOIDs(t *testing.T) {
	tmpl, err := Parse([]byte(`
name: merge
attributes:
  - oid: 1.2.3
    values:
      - {type: raw, value: "0500"}
  - oid: 1.2.4
    values:
      - {type: utf8, value: x}
  - oid: 1.2.3
    values:
      - {type: raw, value: "0400"}
`))
	require.NoError(t, err)

	set, err := tmpl.Build()
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	a, err := set.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", a.OID)
	assert.Equal(t, []cms.Value{{0x05, 0x00}, {0x04, 0x00}}, a.Values.Slice())
}

func TestBuildRejectsSecondSigningTime(t *testing.T) {
	tmpl, err := Parse([]byte(`
name: twice
attributes:
  - oid: signingTime
    values:
      - {type: time, value: "2026-10-17T08:00:00Z"}
  - oid: 1.2.840.113549.1.9.5
    values:
      - {type: time, value: "2026-10-18T08:00:00Z"}
`))
	require.NoError(t, err)

	_, err = tmpl.Build()
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 7, le.Line)
	assert.ErrorIs(t, err, cms.ErrMultipleSigningTime)
	assert.ErrorIs(t, err, cms.ErrFormat)
}

func TestBuildUnknownOIDName(t *testing.T) {
	tmpl := &Template{Name: "x", Attributes: []AttributeSpec{
		{OID: "noSuchName", Values: []ValueSpec{{TypeUTF8, "a"}}},
	}}
	_, err := tmpl.Build()
	assert.ErrorIs(t, err, oid.ErrInvalidOID)
}

func TestAddToSignedAttributesBuilder(t *testing.T) {
	b, err := cms.NewSignedAttributesBuilder(oid.Data, []byte{0xde, 0xad})
	require.NoError(t, err)

	tmpl, err := Parse([]byte(invoiceYAML))
	require.NoError(t, err)
	require.NoError(t, tmpl.AddTo(b))

	set := b.Attributes()
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, 3, set.Index(oid.SigningTime))
}
