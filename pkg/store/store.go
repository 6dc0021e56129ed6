package store

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
)

// Store errors.
var (
	ErrNotFound    = errors.New("attribute set not found")
	ErrInvalidName = errors.New("invalid attribute set name")
)

var bucketName = []byte("attrsets")

// Record is one stored attribute set.
type Record struct {
	Name     string            `msgpack:"name"`
	SavedAt  time.Time         `msgpack:"saved_at"`
	Snapshot snapshot.Snapshot `msgpack:"snapshot"`
}

// Set rebuilds the attribute set held by the record.
func (r *Record) Set(opts ...cms.SetOption) (*cms.AttributeSet, error) {
	return r.Snapshot.Build(opts...)
}

// Options configures Open.
type Options struct {
	// Timeout bounds how long Open waits for the file lock.
	Timeout time.Duration

	// IsTesting disables fsync for faster tests.
	IsTesting bool

	// Now overrides the clock used for SavedAt.
	Now func() time.Time
}

// Store is a bbolt-backed attribute set store. It is safe for concurrent use.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the store at path.
func Open(path string, opt Options) (*Store, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout > 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}

	db, err := bbolt.Open(path, 0600, &bopt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}

	now := opt.Now
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, now: now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put saves set under name, replacing any previous record.
func (s *Store) Put(name string, set *cms.AttributeSet) error {
	if name == "" {
		return ErrInvalidName
	}
	rec := Record{
		Name:     name,
		SavedAt:  s.now().UTC(),
		Snapshot: snapshot.FromSet(set),
	}
	data, err := encodeRecord(&rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(name), data)
	})
}

// Get loads the record stored under name.
func (s *Store) Get(name string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		r, err := decodeRecord(data)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Load loads the attribute set stored under name.
func (s *Store) Load(name string, opts ...cms.SetOption) (*cms.AttributeSet, error) {
	rec, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return rec.Set(opts...)
}

// Delete removes the record stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return b.Delete([]byte(name))
	})
}

// List returns the stored names in lexical order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func encodeRecord(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(rec)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("store: failed to encode %q: %w", rec.Name, err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	var rec Record
	err := dec.Decode(&rec)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("store: failed to decode record: %w", err)
	}
	return &rec, nil
}
