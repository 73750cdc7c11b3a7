// Package logging provides the leveled logger used across the service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// Entries are written by zerolog. Components take a *Logger in their
// constructors and bind their own fields with [Logger.With]; the package-level
// helpers write to the process-wide default.
//
// The level is configured via LOG_LEVEL (or DEBUG=true), and LOG_FORMAT=json
// switches from console output to JSON lines.
package logging
