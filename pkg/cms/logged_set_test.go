package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/log/mocks"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

func TestLoggedSetEvents(t *testing.T) {
	logger := mocks.NewMockLogger(t)
	s := NewLoggedSet(nil, WithLogger(logger), WithClock(fixedClock), WithSetID("set-1"), WithSource("cli"))

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil && e.Mutation.Operation == log.OpInsert &&
			e.SetID == "set-1" && e.Source == "cli" && e.Timestamp.Equal(fixedNow)
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Mutation != nil && e.Mutation.Operation == log.OpMerge && e.Mutation.Total == 2
	})).Return().Once()

	_, err := s.AddValue("1.2.3", v1)
	require.NoError(t, err)
	_, err = s.Add(NewAttribute("1.2.3", v2))
	require.NoError(t, err)

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Encoding != nil && e.Encoding.Attributes == 1
	})).Return().Twice()
	der, err := s.MarshalDER()
	require.NoError(t, err)
	implicit, err := s.MarshalImplicit(0)
	require.NoError(t, err)
	assert.Equal(t, der[1:], implicit[1:])
}

func TestLoggedSetRejections(t *testing.T) {
	rec := &recorder{}
	s := NewLoggedSet(nil, WithLogger(rec))

	_, err := s.AddValue(oid.SigningTime, v1)
	require.NoError(t, err)
	_, err = s.AddValue(oid.SigningTime, v2)
	require.ErrorIs(t, err, ErrMultipleSigningTime)

	_, err = s.AddValue("1.2.3", nil)
	require.ErrorIs(t, err, ErrNilArgument)

	require.Len(t, rec.events, 3)
	assert.Equal(t, log.LevelError, rec.events[1].Level)
	assert.Equal(t, "AddValue", rec.events[1].Error.Context)
	assert.Equal(t, log.LevelWarn, rec.events[2].Level)
	assert.Equal(t, 1, s.Attributes().Len())
}

func TestLoggedSetReset(t *testing.T) {
	rec := &recorder{}
	s := NewLoggedSet(nil, WithLogger(rec))
	_, err := s.AddValue("1.2.3", v1)
	require.NoError(t, err)
	first := s.ID()

	s.Reset(nil)
	assert.Equal(t, 0, s.Attributes().Len())
	assert.NotEqual(t, first, s.ID())

	s.SetLogger(nil)
	_, err = s.AddValue("1.2.3", v1)
	require.NoError(t, err)
	assert.Len(t, rec.events, 1)
}
