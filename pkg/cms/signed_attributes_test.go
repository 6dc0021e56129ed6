package cms

import (
	"encoding/asn1"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/log/mocks"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recorder struct {
	events []log.Event
}

func (r *recorder) Log(e log.Event) { r.events = append(r.events, e) }

func newTestBuilder(t *testing.T, opts ...Option) *SignedAttributesBuilder {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	b, err := NewSignedAttributesBuilder(oid.Data, []byte{0xde, 0xad, 0xbe, 0xef}, opts...)
	require.NoError(t, err)
	return b
}

func TestNewSignedAttributesBuilderSeeds(t *testing.T) {
	b := newTestBuilder(t)
	set := b.Attributes()
	require.Equal(t, 2, set.Len())

	ct, _ := set.Get(0)
	assert.Equal(t, oid.ContentType, ct.OID)
	var ctVal asn1.ObjectIdentifier
	_, err := asn1.Unmarshal(ct.Values.At(0), &ctVal)
	require.NoError(t, err)
	assert.Equal(t, oid.Data, ctVal.String())

	md, _ := set.Get(1)
	assert.Equal(t, oid.MessageDigest, md.OID)
	var digest []byte
	_, err = asn1.Unmarshal(md.Values.At(0), &digest)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, digest)

	assert.NotEmpty(t, b.ID())
}

func TestNewSignedAttributesBuilderErrors(t *testing.T) {
	_, err := NewSignedAttributesBuilder(oid.Data, nil)
	assert.ErrorIs(t, err, ErrNilArgument)

	_, err = NewSignedAttributesBuilder("bogus", []byte{1})
	assert.ErrorIs(t, err, oid.ErrInvalidOID)
}

func TestSignedAttributesBuilderSigningTime(t *testing.T) {
	rec := &recorder{}
	b := newTestBuilder(t, WithLogger(rec))

	i, err := b.SetSigningTimeNow()
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	st, _ := b.Attributes().Get(2)
	var got time.Time
	_, err = asn1.Unmarshal(st.Values.At(0), &got)
	require.NoError(t, err)
	assert.True(t, got.Equal(fixedNow))

	_, err = b.SetSigningTime(fixedNow.Add(time.Hour))
	require.True(t, errors.Is(err, ErrMultipleSigningTime))
	assert.Equal(t, 3, b.Attributes().Len())
	assert.Equal(t, 1, st.Values.Len())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, log.CategoryError, last.Category)
	assert.Equal(t, log.LevelError, last.Level)
	require.NotNil(t, last.Error)
	assert.Equal(t, "SetSigningTime", last.Error.Context)
	assert.Equal(t, oid.SigningTime, last.Error.OID)
}

func TestSignedAttributesBuilderEvents(t *testing.T) {
	logger := mocks.NewMockLogger(t)

	var seeded []log.Event
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil && e.Mutation.Operation == log.OpSeed
	})).Run(func(e log.Event) { seeded = append(seeded, e) }).Return().Times(2)

	b := newTestBuilder(t, WithLogger(logger), WithSetID("set-42"), WithSource("test"))
	require.Len(t, seeded, 2)
	assert.Equal(t, "set-42", seeded[0].SetID)
	assert.Equal(t, "test", seeded[0].Source)
	assert.Equal(t, log.LevelDebug, seeded[0].Level)
	assert.Equal(t, fixedNow, seeded[0].Timestamp)

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil && e.Mutation.Operation == log.OpInsert &&
			e.Mutation.OID == "1.2.3" && e.Mutation.Index == 2 && e.Mutation.Count == 3
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil && e.Mutation.Operation == log.OpMerge &&
			e.Mutation.Index == 2 && e.Mutation.Added == 1 && e.Mutation.Total == 2
	})).Return().Once()

	_, err := b.AddValue("1.2.3", v1)
	require.NoError(t, err)
	_, err = b.AddValue("1.2.3", v2)
	require.NoError(t, err)

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Category == log.CategoryError && e.Level == log.LevelWarn &&
			e.Error != nil && e.Error.Context == "AddValue"
	})).Return().Once()
	_, err = b.AddValue("1.2.3", nil)
	assert.ErrorIs(t, err, ErrNilArgument)

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Encoding != nil && e.Encoding.Format == "der" && e.Encoding.Attributes == 3
	})).Return().Once()
	enc, err := b.MarshalDER()
	require.NoError(t, err)
	assert.Equal(t, byte(0x31), enc[0])
}

func TestSignedAttributesBuilderAddAndRemove(t *testing.T) {
	rec := &recorder{}
	b := newTestBuilder(t, WithLogger(rec))

	extra := NewAttribute(oid.DocumentName, v1)
	i, err := b.Add(extra)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = b.Add(extra)
	assert.ErrorIs(t, err, ErrDuplicateItem)

	require.NoError(t, b.Remove(extra))
	assert.Equal(t, 2, b.Attributes().Len())

	last := rec.events[len(rec.events)-1]
	require.NotNil(t, last.Mutation)
	assert.Equal(t, log.OpRemove, last.Mutation.Operation)
	assert.Equal(t, 2, last.Mutation.Count)

	assert.ErrorIs(t, b.Remove(nil), ErrNilArgument)
	_, err = b.Add(nil)
	assert.ErrorIs(t, err, ErrNilArgument)
}

func TestSignedAttributesBuilderMarshalImplicit(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.SetSigningTime(fixedNow)
	require.NoError(t, err)

	implicit, err := b.MarshalImplicit()
	require.NoError(t, err)
	plain, err := b.MarshalDER()
	require.NoError(t, err)

	assert.Equal(t, byte(0xa0), implicit[0])
	assert.Equal(t, plain[1:], implicit[1:], "only the tag differs")
}

func TestSignedAttributesBuilderMarshalError(t *testing.T) {
	rec := &recorder{}
	b := newTestBuilder(t, WithLogger(rec))
	_, err := b.AddValue("x.y", v1)
	require.NoError(t, err)

	_, err = b.MarshalDER()
	require.Error(t, err)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, log.CategoryError, last.Category)
}

func TestSignedAttributesBuilderSingleValued(t *testing.T) {
	tests := []struct {
		name string
		add  func(b *SignedAttributesBuilder) error
	}{
		{name: "content type value", add: func(b *SignedAttributesBuilder) error {
			_, err := b.AddValue(oid.ContentType, v1)
			return err
		}},
		{name: "message digest attribute", add: func(b *SignedAttributesBuilder) error {
			_, err := b.Add(NewAttribute(oid.MessageDigest, v2))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			b := newTestBuilder(t, WithLogger(rec))

			err := tt.add(b)
			require.ErrorIs(t, err, ErrSingleValued)
			assert.ErrorIs(t, err, ErrFormat)

			for _, a := range b.Attributes().All() {
				assert.Equal(t, 1, a.Values.Len(), a.OID)
			}
			last := rec.events[len(rec.events)-1]
			assert.Equal(t, log.LevelError, last.Level)
			require.NotNil(t, last.Error)
		})
	}
}

func TestSignedAttributesBuilderReaddsRemovedSeed(t *testing.T) {
	b := newTestBuilder(t)
	ct, _ := b.Attributes().Get(0)
	require.NoError(t, b.Remove(ct))

	i, err := b.AddValue(oid.ContentType, v1)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}
