package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cmsattr/cmsattr-go/pkg/oid"
)

// Filter specifies criteria for filtering events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// SetID filters by exact set ID match.
	SetID string

	// Category filters by event category.
	Category *Category

	// MinLevel drops events below this level.
	MinLevel *Level

	// OID filters mutation and error events by attribute type.
	OID string

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.SetID != "" && event.SetID != f.SetID {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.MinLevel != nil && event.Level < *f.MinLevel {
		return false
	}
	if f.OID != "" && !oid.Equal(f.OID, eventOID(event)) {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

func eventOID(event Event) string {
	switch {
	case event.Mutation != nil:
		return event.Mutation.OID
	case event.Error != nil:
		return event.Error.OID
	default:
		return ""
	}
}

// Reader reads events from a CBOR-encoded file.
// It streams, so large files are not loaded into memory.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader that reads all events from the specified log file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
