package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
	"github.com/cmsattr/cmsattr-go/pkg/store"
)

// StoreOptions identifies the store and record for the store subcommands.
type StoreOptions struct {
	Path string
	Name string

	// File is the snapshot file read by put or written by get.
	File string

	View ViewOptions
}

func openStore(path string) (*store.Store, error) {
	s, err := store.Open(path, store.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// RunStorePut saves the snapshot file opts.File under opts.Name.
func RunStorePut(opts StoreOptions, w io.Writer) error {
	if opts.Name == "" || opts.File == "" {
		return fmt.Errorf("%w: name and snapshot file", errMissingArg)
	}
	set, err := snapshot.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	s, err := openStore(opts.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Put(opts.Name, set); err != nil {
		return err
	}
	fmt.Fprintf(w, "Stored %s (%d attributes)\n", opts.Name, set.Len())
	return nil
}

// RunStoreGet prints the set stored under opts.Name, or writes it to
// opts.File as a snapshot when a file is given.
func RunStoreGet(opts StoreOptions, w io.Writer) error {
	if opts.Name == "" {
		return fmt.Errorf("%w: name", errMissingArg)
	}
	s, err := openStore(opts.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Get(opts.Name)
	if err != nil {
		return err
	}
	set, err := rec.Set()
	if err != nil {
		return err
	}

	if opts.File != "" {
		if err := snapshot.WriteFile(opts.File, set); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s to %s\n", opts.Name, opts.File)
		return nil
	}

	fmt.Fprintf(w, "%s (saved %s)\n", rec.Name, rec.SavedAt.Format(time.RFC3339))
	return FormatSet(w, set, opts.View)
}

// RunStoreList prints the stored names, one per line.
func RunStoreList(opts StoreOptions, w io.Writer) error {
	s, err := openStore(opts.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// RunStoreDelete removes the record stored under opts.Name.
func RunStoreDelete(opts StoreOptions, w io.Writer) error {
	if opts.Name == "" {
		return fmt.Errorf("%w: name", errMissingArg)
	}
	s, err := openStore(opts.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(opts.Name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %s\n", opts.Name)
	return nil
}
