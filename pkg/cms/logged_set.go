package cms

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// LoggedSet wraps an AttributeSet and reports every mutation, encoding and
// rejected operation to a log.Logger. Events carry a set ID that changes
// whenever the wrapped set is replaced.
type LoggedSet struct {
	set    *AttributeSet
	id     string
	source string
	logger log.Logger
	now    func() time.Time
}

// Option configures a LoggedSet or a SignedAttributesBuilder.
type Option func(*LoggedSet)

// WithLogger sets the event logger. The default discards events.
func WithLogger(l log.Logger) Option {
	return func(s *LoggedSet) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets the Source field of emitted events.
func WithSource(source string) Option {
	return func(s *LoggedSet) {
		s.source = source
	}
}

// WithClock sets the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *LoggedSet) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSetID overrides the generated set ID used in events.
func WithSetID(id string) Option {
	return func(s *LoggedSet) {
		if id != "" {
			s.id = id
		}
	}
}

// NewLoggedSet wraps set. A nil set is replaced by an empty one.
func NewLoggedSet(set *AttributeSet, opts ...Option) *LoggedSet {
	if set == nil {
		set = NewAttributeSet()
	}
	s := &LoggedSet{
		set:    set,
		id:     uuid.NewString(),
		source: "set",
		logger: log.NoopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attributes returns the wrapped set. Mutations made on it directly are not
// logged.
func (s *LoggedSet) Attributes() *AttributeSet {
	return s.set
}

// ID returns the set ID used in emitted events.
func (s *LoggedSet) ID() string {
	return s.id
}

// Now returns the current time from the configured clock.
func (s *LoggedSet) Now() time.Time {
	return s.now()
}

// SetLogger replaces the event logger. nil discards events.
func (s *LoggedSet) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NoopLogger{}
	}
	s.logger = l
}

// Reset swaps in set under a new set ID. A nil set starts an empty one.
func (s *LoggedSet) Reset(set *AttributeSet) {
	if set == nil {
		set = NewAttributeSet()
	}
	s.set = set
	s.id = uuid.NewString()
}

// Add adds attr through AttributeSet.Add and logs an insert, a merge or the
// rejection.
func (s *LoggedSet) Add(attr *Attribute) (int, error) {
	return s.add(attr, "Add")
}

// AddValue adds a single value under attrType.
func (s *LoggedSet) AddValue(attrType string, value Value) (int, error) {
	return s.addValue(attrType, value, "AddValue")
}

// Remove removes attr from the set.
func (s *LoggedSet) Remove(attr *Attribute) error {
	if err := s.set.Remove(attr); err != nil {
		s.logError(log.OpRemove, "", err, "Remove")
		return err
	}
	s.emit(log.LevelInfo, log.CategoryMutation, &log.MutationEvent{
		Operation: log.OpRemove,
		OID:       attr.OID,
		Index:     -1,
		Count:     s.set.Len(),
	}, nil, nil)
	return nil
}

// MarshalDER encodes the set as a DER SET OF Attribute.
func (s *LoggedSet) MarshalDER() ([]byte, error) {
	return s.encoded(s.set.MarshalDER())
}

// MarshalImplicit encodes the set with a context-specific implicit tag.
func (s *LoggedSet) MarshalImplicit(tag uint8) ([]byte, error) {
	return s.encoded(s.set.MarshalImplicit(tag))
}

func (s *LoggedSet) encoded(out []byte, err error) ([]byte, error) {
	if err != nil {
		s.emit(log.LevelError, log.CategoryError, nil, nil, &log.ErrorEventData{
			Message: err.Error(),
			Context: "MarshalDER",
		})
		return nil, err
	}
	s.emit(log.LevelDebug, log.CategoryEncoding, nil, &log.EncodingEvent{
		Format:     "der",
		Size:       len(out),
		Attributes: s.set.Len(),
	}, nil)
	return out, nil
}

// seed appends attr without merge checks.
func (s *LoggedSet) seed(attr *Attribute) {
	i := s.set.unmerged().append(attr)
	s.emit(log.LevelDebug, log.CategoryMutation, &log.MutationEvent{
		Operation: log.OpSeed,
		OID:       attr.OID,
		Index:     i,
		Added:     attr.Values.Len(),
		Total:     attr.Values.Len(),
		Count:     s.set.Len(),
	}, nil, nil)
}

func (s *LoggedSet) addValue(attrType string, value Value, context string) (int, error) {
	if len(value) == 0 {
		err := fmt.Errorf("%w: value", ErrNilArgument)
		s.logError(log.OpInsert, attrType, err, context)
		return -1, err
	}
	return s.add(NewAttribute(attrType, value), context)
}

func (s *LoggedSet) add(attr *Attribute, context string) (int, error) {
	before := s.set.Len()
	i, err := s.set.Add(attr)
	if err != nil {
		attrType := ""
		if attr != nil {
			attrType = attr.OID
		}
		s.logError(log.OpInsert, attrType, err, context)
		return -1, err
	}

	op := log.OpInsert
	if s.set.Len() == before {
		op = log.OpMerge
	}
	target := s.set.attrs[i]
	s.emit(log.LevelInfo, log.CategoryMutation, &log.MutationEvent{
		Operation: op,
		OID:       target.OID,
		Index:     i,
		Added:     attr.Values.Len(),
		Total:     target.Values.Len(),
		Count:     s.set.Len(),
	}, nil, nil)
	return i, nil
}

// logError reports a rejected operation. Message-format violations are
// logged at error level, misuse at warn.
func (s *LoggedSet) logError(op log.Operation, attrType string, err error, context string) {
	level := log.LevelWarn
	if errors.Is(err, ErrFormat) {
		level = log.LevelError
	}
	s.emit(level, log.CategoryError, nil, nil, &log.ErrorEventData{
		Operation: op,
		OID:       attrType,
		Message:   err.Error(),
		Context:   context,
	})
}

func (s *LoggedSet) emit(level log.Level, cat log.Category, m *log.MutationEvent, e *log.EncodingEvent, ed *log.ErrorEventData) {
	s.logger.Log(log.Event{
		Timestamp: s.now(),
		SetID:     s.id,
		Level:     level,
		Category:  cat,
		Source:    s.source,
		Mutation:  m,
		Encoding:  e,
		Error:     ed,
	})
}
