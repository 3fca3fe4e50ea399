// Package main hosts the aromasheet CLI entrypoint and command graph.
//
// The Cobra-based command tree maps terminal invocations onto the workbench:
// sheet management, ingredient rows, trial edits, QSP designation, sensory
// profiles, cost and classification analysis, catalog search, and
// configuration scaffolding. It centralizes configuration resolution, the
// single-editor lock, and logging setup so subcommands only translate
// arguments into formulation actions and render the result.
//
// Keep this package lean: new behavior belongs in internal/formulation or
// internal/workbench first, then gets surfaced here.
package main
