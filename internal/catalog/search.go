package catalog

import (
	"aromasheet/internal/formulation"
	"aromasheet/internal/textutil"
)

// Options narrows a search.
type Options struct {
	// Limit caps the number of results. Zero or negative means DefaultLimit.
	Limit int
	// Type keeps only entries of that type when set.
	Type formulation.IngredientType
}

// Search returns the entries whose name, reference, extract source, type, and
// CAS number contain every whitespace-separated token of query, ignoring case
// and accents. An empty query lists the catalog. Results keep catalog order.
func (c *Catalog) Search(query string, opts Options) []Entry {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Entry, 0)
	if c == nil {
		return results
	}
	tokens := textutil.Tokens(query)
	for _, e := range c.entries {
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if !textutil.MatchAll(tokens, e.Name, e.Reference, e.ExtractSource, string(e.Type), e.CAS) {
			continue
		}
		results = append(results, e)
		if len(results) == limit {
			break
		}
	}
	return results
}
