package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// Stats holds aggregate statistics about an event log.
type Stats struct {
	TotalEvents       int
	EventsByLevel     map[log.Level]int
	EventsByCategory  map[log.Category]int
	EventsByOperation map[log.Operation]int
	Sets              map[string]*SetStats
	Errors            int
	FormatViolations  int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SetStats holds statistics for a single attribute set.
type SetStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Source     string
	Attributes int
	Encodings  int
}

// RunLogStats analyzes the event log and prints statistics.
func RunLogStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLevel:     make(map[log.Level]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByOperation: make(map[log.Operation]int),
		Sets:              make(map[string]*SetStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLevel[event.Level]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	set, ok := s.Sets[event.SetID]
	if !ok {
		set = &SetStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Sets[event.SetID] = set
	}
	set.Events++
	if event.Timestamp.After(set.LastSeen) {
		set.LastSeen = event.Timestamp
	}
	if event.Source != "" && set.Source == "" {
		set.Source = event.Source
	}

	switch {
	case event.Mutation != nil:
		s.EventsByOperation[event.Mutation.Operation]++
		set.Attributes = event.Mutation.Count
	case event.Encoding != nil:
		set.Encodings++
	case event.Error != nil:
		s.Errors++
		if event.Level == log.LevelError {
			s.FormatViolations++
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Attribute Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Level:")
	for _, l := range []log.Level{log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError} {
		if count := stats.EventsByLevel[l]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", l.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMutation, log.CategoryEncoding, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Mutations:")
	for _, op := range []log.Operation{log.OpSeed, log.OpInsert, log.OpMerge, log.OpRemove} {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sets: %d\n", len(stats.Sets))
	if len(stats.Sets) > 0 {
		type setInfo struct {
			id    string
			stats *SetStats
		}
		sets := make([]setInfo, 0, len(stats.Sets))
		for id, ss := range stats.Sets {
			sets = append(sets, setInfo{id, ss})
		}
		sort.Slice(sets, func(i, j int) bool {
			return sets[i].stats.FirstSeen.Before(sets[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sets {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSetID(s.id), s.stats.Events, duration)
			if s.stats.Source != "" {
				fmt.Fprintf(w, "           Source: %s\n", s.stats.Source)
			}
			fmt.Fprintf(w, "           Attributes: %d, encodings: %d\n", s.stats.Attributes, s.stats.Encodings)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d (%d format violations)\n", stats.Errors, stats.FormatViolations)
	}
}
