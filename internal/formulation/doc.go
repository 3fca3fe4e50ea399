// Package formulation holds the worksheet core: ingredients, trials, the
// quantity model, the QSP resolver, the derivation engine, and the reducer
// that governs every edit.
//
// Derivations (Cost, Density, Vanillin, Classify, and the helpers built on
// them) are pure functions of a trial's cells, the ingredient list, the QSP
// designation, and the trial's target mass. They never fail: missing, zero, or
// non-finite inputs degrade to zero-valued results.
//
// Edits go through Reduce, which maps a Sheet and an Action to a new Sheet
// without mutating the input. Numeric input is coerced there, capacity limits
// are enforced there as silent no-ops, and the QSP freeze rules (the only
// place a derived value is written back into the sheet) live there.
package formulation
