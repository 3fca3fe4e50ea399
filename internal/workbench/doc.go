// Package workbench is the editing session behind the CLI.
//
// A Workbench lists, creates, opens, renames, duplicates and deletes sheets
// in a sheetstore.Store. A Session holds one open sheet: it applies actions
// through formulation.Reduce one at a time, autosaves after every dispatch,
// keeps the index entry in step with the project fields, and reports
// advisory notices (success, warning, info) to a Notifier. Notices are never
// errors.
package workbench
