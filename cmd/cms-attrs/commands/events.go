package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [set:id] LEVEL CATEGORY Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	setID := shortenSetID(event.SetID)

	var typeLabel string
	switch {
	case event.Mutation != nil:
		typeLabel = event.Mutation.Operation.String()
	case event.Encoding != nil:
		typeLabel = strings.ToUpper(event.Encoding.Format)
	case event.Error != nil:
		typeLabel = event.Error.Operation.String()
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [set:%s] %-5s %s %s\n", ts, setID, event.Level.String(), event.Category.String(), typeLabel)
	if event.Source != "" {
		fmt.Fprintf(w, "  Source: %s\n", event.Source)
	}

	switch {
	case event.Mutation != nil:
		formatMutationDetails(w, event.Mutation)
	case event.Encoding != nil:
		fmt.Fprintf(w, "  Size: %d bytes, %d attributes\n", event.Encoding.Size, event.Encoding.Attributes)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSetID returns the first 8 characters of the set ID.
func shortenSetID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatMutationDetails(w io.Writer, m *log.MutationEvent) {
	fmt.Fprintf(w, "  OID: %s\n", m.OID)
	if m.Index >= 0 {
		fmt.Fprintf(w, "  Index: %d of %d\n", m.Index, m.Count)
	} else {
		fmt.Fprintf(w, "  Attributes: %d\n", m.Count)
	}
	if m.Added > 0 {
		fmt.Fprintf(w, "  Values: +%d (total %d)\n", m.Added, m.Total)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	if err.OID != "" {
		fmt.Fprintf(w, "  OID: %s\n", err.OID)
	}
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "mutation":
		return log.CategoryMutation, nil
	case "encoding":
		return log.CategoryEncoding, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be mutation, encoding, or error)", s)
	}
}

// EventFilterOptions holds the string-valued event filter flags.
type EventFilterOptions struct {
	SetID     string
	Category  string
	MinLevel  string
	OID       string
	TimeStart string
	TimeEnd   string
}

// Filter converts the options into a log.Filter.
func (o EventFilterOptions) Filter() (log.Filter, error) {
	filter := log.Filter{
		SetID: o.SetID,
		OID:   o.OID,
	}

	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}

	if o.MinLevel != "" {
		l, err := log.ParseLevel(o.MinLevel)
		if err != nil {
			return filter, err
		}
		filter.MinLevel = &l
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunLogView prints the events of an event log that match opts.
func RunLogView(path string, opts EventFilterOptions, output io.Writer) error {
	filter, err := opts.Filter()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
