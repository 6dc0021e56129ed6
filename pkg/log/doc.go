// Package log provides structured event logging for attribute-set builders.
//
// This package defines the Logger interface and Event types for capturing
// what happens while a CMS attribute set is assembled: attributes inserted,
// values merged into existing attributes, attributes removed, sets encoded,
// and rejected operations. It is separate from operational logging (slog);
// the event log is a machine-readable trace for debugging and auditing
// signature construction.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For auditing: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/cms/builder.alog")
//
//	// Both, dropping debug-level events
//	logger := log.NewLevelFilter(log.LevelInfo, log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	))
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .alog extension.
// The cms-attrs CLI "log" command views and filters them.
package log
