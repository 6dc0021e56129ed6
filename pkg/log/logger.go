package log

// Logger is the interface applications implement to receive builder events.
// Pass NoopLogger to disable logging.
type Logger interface {
	// Log records an event. Implementations must not block for long.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
