// Package sheetstore persists worksheets and the sheet index.
//
// Two records exist per worksheet: its Meta entry in the index (name,
// reference, timestamps, shown by listings) and the JSON document holding the
// full formulation.Sheet. The SQL implementation keeps them in separate tables
// and runs on SQLite by default or Postgres when configured. MemStore keeps
// both in memory for tests.
//
// The application has a single active editor. EditorLock guards a data
// directory with an advisory file lock so that a second process fails fast
// instead of interleaving writes.
package sheetstore
