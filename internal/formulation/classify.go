package formulation

import (
	"fmt"
	"sort"
	"strings"

	"aromasheet/internal/textutil"
)

// Label classes, one per branch of the classification rules.
const (
	ClassNone                     = ""
	ClassAroma                    = "aroma"
	ClassNaturalAroma             = "natural-aroma"
	ClassNaturalAromaOf           = "natural-aroma-of-x"
	ClassNaturalAromaOfWithOthers = "natural-aroma-of-x-with-others"
)

// DominanceThreshold is the share, in percent, a named source needs for a
// plain "natural aroma of X" label.
const DominanceThreshold = 95.0

// UnsourcedLabel names the bucket of aromatic ingredients without a declared
// source.
const UnsourcedLabel = "Other substances"

// Source is one bar of the source attribution breakdown.
type Source struct {
	Source      string  `json:"source"`
	Quantity    float64 `json:"quantity"`
	Percentage  float64 `json:"percentage"`
	FromExtract bool    `json:"fromExtract"`
	Unsourced   bool    `json:"isUnsourced,omitempty"`
}

// Classification is the labeling decision for a trial.
type Classification struct {
	Label   string `json:"label"`
	Class   string `json:"cssClass"`
	Details string `json:"details"`
	// LocalLabel is the French regulatory wording, with elision applied.
	LocalLabel string   `json:"localLabel"`
	Sources    []Source `json:"sources"`
}

type aromatic struct {
	ingredient Ingredient
	quantity   float64
}

// Classify labels a trial from its aromatic ingredients:
//
//  1. no aromatic with positive mass: neutral, no label;
//  2. any synthetic aromatic: "Aroma", whatever else is present;
//  3. natural aromatics without extracts: "Natural aroma";
//  4. a single aromatic that is an extract: "Natural aroma of <source>";
//  5. otherwise the dominant named source decides, with the
//     DominanceThreshold separating "of X" from "of X with other natural
//     aromas", and a generic "Natural aroma" when no source is named.
//
// Quantities are effective (mass × dilution) and the QSP ingredient is
// resolved like in the other derivations.
func Classify(cells Cells, ingredients []Ingredient, qspID string, targetMass float64) Classification {
	var aromatics []aromatic
	synthetic := false
	extracts := 0
	for _, l := range activeLines(cells, ingredients, qspID, targetMass) {
		if l.ingredient.Type != TypeAromatic {
			continue
		}
		if l.ingredient.Classification == Synthetic {
			synthetic = true
		}
		if l.ingredient.IsExtract {
			extracts++
		}
		aromatics = append(aromatics, aromatic{ingredient: l.ingredient, quantity: l.effective()})
	}

	if len(aromatics) == 0 {
		return Classification{Details: "No flavouring ingredients", Sources: []Source{}}
	}

	sources := attributeSources(aromatics)

	if synthetic {
		return Classification{
			Label:      "Aroma",
			Class:      ClassAroma,
			Details:    "Contains synthetic flavouring substances",
			LocalLabel: "Arôme",
			Sources:    sources,
		}
	}

	if extracts == 0 {
		return naturalAroma("Natural flavouring substances only", sources)
	}

	if len(aromatics) == 1 {
		if src := strings.TrimSpace(aromatics[0].ingredient.ExtractSource); src != "" {
			de := Preposition(src)
			return Classification{
				Label:      "Natural aroma of " + src,
				Class:      ClassNaturalAromaOf,
				Details:    "Single extract of " + src,
				LocalLabel: fmt.Sprintf("Arôme naturel %s (extrait %s)", de, de),
				Sources:    sources,
			}
		}
	}

	for _, s := range sources {
		if s.Unsourced {
			continue
		}
		de := Preposition(s.Source)
		if s.Percentage >= DominanceThreshold {
			return Classification{
				Label:      "Natural aroma of " + s.Source,
				Class:      ClassNaturalAromaOf,
				Details:    fmt.Sprintf("≥%.0f%% from %s", DominanceThreshold, s.Source),
				LocalLabel: "Arôme naturel " + de,
				Sources:    sources,
			}
		}
		return Classification{
			Label:      "Natural aroma of " + s.Source + " with other natural aromas",
			Class:      ClassNaturalAromaOfWithOthers,
			Details:    fmt.Sprintf("%.1f%% from %s", s.Percentage, s.Source),
			LocalLabel: "Arôme naturel " + de + " avec autres arômes naturels",
			Sources:    sources,
		}
	}

	return naturalAroma("Blend of natural aromas", sources)
}

func naturalAroma(details string, sources []Source) Classification {
	return Classification{
		Label:      "Natural aroma",
		Class:      ClassNaturalAroma,
		Details:    details,
		LocalLabel: "Arôme naturel",
		Sources:    sources,
	}
}

// SourceKey is the grouping key of a declared extract source: case and
// accents folded, whitespace collapsed.
func SourceKey(source string) string {
	return strings.Join(strings.Fields(textutil.Fold(source)), " ")
}

// attributeSources groups aromatic quantities by declared source. Named
// sources are sorted by descending share; the unsourced bucket, if any, comes
// last.
func attributeSources(aromatics []aromatic) []Source {
	var total float64
	for _, a := range aromatics {
		total += a.quantity
	}
	if total <= 0 {
		return []Source{}
	}

	byKey := make(map[string]int)
	named := make([]Source, 0, len(aromatics))
	var unsourced float64
	for _, a := range aromatics {
		key := SourceKey(a.ingredient.ExtractSource)
		if key == "" {
			unsourced += a.quantity
			continue
		}
		idx, ok := byKey[key]
		if !ok {
			idx = len(named)
			byKey[key] = idx
			named = append(named, Source{Source: strings.TrimSpace(a.ingredient.ExtractSource)})
		}
		named[idx].Quantity += a.quantity
		if a.ingredient.IsExtract {
			named[idx].FromExtract = true
		}
	}
	for i := range named {
		named[i].Percentage = named[i].Quantity / total * 100
	}
	sort.SliceStable(named, func(i, j int) bool {
		return named[i].Percentage > named[j].Percentage
	})
	if unsourced > 0 {
		named = append(named, Source{
			Source:     UnsourcedLabel,
			Quantity:   unsourced,
			Percentage: unsourced / total * 100,
			Unsourced:  true,
		})
	}
	return named
}

// Preposition applies French elision to a source name: "d'orange" before a
// vowel sound (a, e, i, o, u, h, y, accented or not), "de vanille" otherwise.
func Preposition(source string) string {
	s := strings.TrimSpace(source)
	for _, r := range textutil.Fold(s) {
		if strings.ContainsRune("aeiouhyæœ", r) {
			return "d'" + s
		}
		break
	}
	return "de " + s
}
