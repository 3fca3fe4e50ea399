// Package preflight checks that the environment aromasheet runs in is usable:
// the data and log directories, the sheet database, the catalog, and the
// editor lock.
//
// The CLI "aromasheet status" command runs every check and prints the
// results; "config validate" stops at parsing and does not touch the
// database.
package preflight
