// Package logging assembles the slog loggers used by the aromasheet CLI.
//
// Console output goes to stderr so that table and JSON output on stdout stay
// machine readable. When a log directory is configured every record is also
// written as JSON to aromasheet.log at debug level. Components tag their
// lines through NewComponentLogger, and editing code attaches the sheet id
// with WithSheetID so WithContext can add it to every record.
package logging
