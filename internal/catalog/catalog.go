package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"aromasheet/internal/formulation"
)

// DefaultLimit caps search results when Options.Limit is unset.
const DefaultLimit = 100

//go:embed ingredients.csv
var builtinCSV []byte

// Entry is a catalog row.
type Entry struct {
	Reference      string                     `yaml:"reference"`
	Name           string                     `yaml:"name"`
	Type           formulation.IngredientType `yaml:"type"`
	Classification formulation.Origin         `yaml:"classification"`
	IsExtract      bool                       `yaml:"is_extract"`
	ExtractSource  string                     `yaml:"extract_source"`
	Price          float64                    `yaml:"price"`
	Density        float64                    `yaml:"density"`
	VanillinRate   float64                    `yaml:"vanillin_rate"`
	CAS            string                     `yaml:"cas"`
}

// Ingredient copies the entry into a worksheet ingredient without an ID.
func (e Entry) Ingredient() formulation.Ingredient {
	return formulation.Ingredient{
		Name:           e.Name,
		Type:           e.Type,
		Classification: e.Classification,
		IsExtract:      e.IsExtract,
		ExtractSource:  e.ExtractSource,
		Price:          e.Price,
		Density:        e.Density,
		VanillinRate:   e.VanillinRate,
		Reference:      e.Reference,
		CAS:            e.CAS,
	}
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("entry %q: name is required", e.Reference)
	}
	if _, ok := formulation.ParseIngredientType(string(e.Type)); !ok {
		return fmt.Errorf("entry %q: unknown type %q", e.Name, e.Type)
	}
	if _, ok := formulation.ParseOrigin(string(e.Classification)); !ok {
		return fmt.Errorf("entry %q: unknown classification %q", e.Name, e.Classification)
	}
	if e.Price < 0 || e.Density < 0 {
		return fmt.Errorf("entry %q: price and density must be non-negative", e.Name)
	}
	if e.VanillinRate < 0 || e.VanillinRate > 100 {
		return fmt.Errorf("entry %q: vanillin rate must be between 0 and 100", e.Name)
	}
	return nil
}

func (e Entry) normalized() Entry {
	e.Reference = strings.TrimSpace(e.Reference)
	e.Name = strings.TrimSpace(e.Name)
	e.ExtractSource = strings.TrimSpace(e.ExtractSource)
	e.CAS = strings.TrimSpace(e.CAS)
	if t, ok := formulation.ParseIngredientType(string(e.Type)); ok {
		e.Type = t
	}
	if c, ok := formulation.ParseOrigin(string(e.Classification)); ok {
		e.Classification = c
	}
	return e
}

// Catalog is an ordered, read-only list of entries.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries, keeping their order.
func New(entries []Entry) *Catalog {
	return &Catalog{entries: append([]Entry(nil), entries...)}
}

// Builtin returns the embedded reference list.
func Builtin() (*Catalog, error) {
	entries, err := parseCSV(strings.NewReader(string(builtinCSV)))
	if err != nil {
		return nil, fmt.Errorf("parse builtin catalog: %w", err)
	}
	return New(entries), nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of every entry.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return append([]Entry(nil), c.entries...)
}

// Lookup finds an entry by reference, ignoring case.
func (c *Catalog) Lookup(reference string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	ref := strings.TrimSpace(reference)
	for _, e := range c.entries {
		if e.Reference != "" && strings.EqualFold(e.Reference, ref) {
			return e, true
		}
	}
	return Entry{}, false
}

// Merge returns a catalog holding c's entries overlaid with extra. An extra
// entry replaces the entry with the same reference in place; the others are
// appended.
func (c *Catalog) Merge(extra []Entry) *Catalog {
	merged := c.Entries()
	index := make(map[string]int, len(merged))
	for i, e := range merged {
		if e.Reference != "" {
			index[strings.ToLower(e.Reference)] = i
		}
	}
	for _, e := range extra {
		key := strings.ToLower(e.Reference)
		if i, ok := index[key]; ok && key != "" {
			merged[i] = e
			continue
		}
		if key != "" {
			index[key] = len(merged)
		}
		merged = append(merged, e)
	}
	return New(merged)
}
