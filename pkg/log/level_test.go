package log

import "testing"

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"Error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFilter(t *testing.T) {
	rec := &recordingLogger{}
	f := NewLevelFilter(LevelWarn, rec)

	f.Log(Event{Level: LevelDebug})
	f.Log(Event{Level: LevelInfo})
	f.Log(Event{Level: LevelWarn, SetID: "w"})
	f.Log(Event{Level: LevelError, SetID: "e"})

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	if rec.events[0].SetID != "w" || rec.events[1].SetID != "e" {
		t.Errorf("unexpected events forwarded: %+v", rec.events)
	}

	if f.Enabled(LevelInfo) {
		t.Error("info should be disabled")
	}
	if !f.Enabled(LevelError) {
		t.Error("error should be enabled")
	}
}

func TestLevelFilterNilNext(t *testing.T) {
	f := NewLevelFilter(LevelDebug, nil)
	f.Log(Event{Level: LevelError})
}
