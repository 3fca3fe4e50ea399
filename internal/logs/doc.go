// Package logs reads back the JSON log file written by the CLI.
//
// Tail returns the last lines of the file with bounded memory and can wait
// for new lines in follow mode. ParseEntry decodes one line into an Entry so
// callers can filter the history of a single sheet or drop chatty levels.
package logs
