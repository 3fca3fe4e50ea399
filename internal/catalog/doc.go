// Package catalog is the reference list of raw materials that worksheet rows
// are filled from.
//
// The built-in list ships embedded as CSV. A user catalog (CSV or YAML) can be
// layered on top with Load; entries with a matching reference replace the
// built-in ones. Picking an entry copies its fields into a new ingredient; no
// link back to the catalog is kept.
package catalog
