package formulation

import "strings"

// IngredientType separates carriers from flavouring ingredients.
type IngredientType string

const (
	TypeSupport  IngredientType = "support"
	TypeAromatic IngredientType = "aromatic"
)

// Origin is the regulatory origin of an ingredient.
type Origin string

const (
	Natural   Origin = "natural"
	Synthetic Origin = "synthetic"
)

// Ingredient is a row of the worksheet.
type Ingredient struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           IngredientType `json:"type"`
	Classification Origin         `json:"classification"`
	IsExtract      bool           `json:"isExtract"`
	ExtractSource  string         `json:"extractSource,omitempty"`
	// Price is expressed in currency per kilogram.
	Price float64 `json:"price"`
	// Density is expressed in g/mL.
	Density float64 `json:"density"`
	// VanillinRate is the vanillin content in percent by mass (0-100).
	VanillinRate float64 `json:"vanillinRate"`
	Reference    string  `json:"reference,omitempty"`
	CAS          string  `json:"cas,omitempty"`
	Order        int     `json:"order"`
}

// ParseIngredientType accepts the canonical names plus the short forms used on
// the command line.
func ParseIngredientType(value string) (IngredientType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "support", "carrier", "sup":
		return TypeSupport, true
	case "aromatic", "aroma", "flavouring", "flavoring", "aro":
		return TypeAromatic, true
	}
	return "", false
}

// ParseOrigin accepts natural/synthetic and their short forms.
func ParseOrigin(value string) (Origin, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "natural", "nat":
		return Natural, true
	case "synthetic", "syn":
		return Synthetic, true
	}
	return "", false
}

// sanitized returns a copy with enums defaulted and numeric fields coerced
// into their valid ranges.
func (ing Ingredient) sanitized() Ingredient {
	ing.Name = strings.TrimSpace(ing.Name)
	ing.ExtractSource = strings.TrimSpace(ing.ExtractSource)
	ing.Reference = strings.TrimSpace(ing.Reference)
	ing.CAS = strings.TrimSpace(ing.CAS)
	if ing.Type != TypeAromatic {
		ing.Type = TypeSupport
	}
	if ing.Classification != Synthetic {
		ing.Classification = Natural
	}
	ing.Price = nonNegative(ing.Price)
	ing.Density = nonNegative(ing.Density)
	ing.VanillinRate = clamp(ing.VanillinRate, 0, 100)
	return ing
}

// DefaultIngredients is the starter list of a new sheet. The first entry is the
// default QSP filler.
func DefaultIngredients() []Ingredient {
	return []Ingredient{
		{ID: "ing-1", Name: "Ethyl alcohol 96%", Type: TypeSupport, Classification: Natural, Price: 2.50, Reference: "SUP001", Density: 0.789, CAS: "64-17-5"},
		{ID: "ing-2", Name: "Propylene glycol", Type: TypeSupport, Classification: Synthetic, Price: 3.20, Reference: "SUP002", Density: 1.036, CAS: "57-55-6", Order: 1},
		{ID: "ing-3", Name: "Vanilla extract", Type: TypeAromatic, Classification: Natural, IsExtract: true, ExtractSource: "vanilla", Price: 200.00, Reference: "EXT001", Density: 0.920, VanillinRate: 0.8, CAS: "8024-06-4", Order: 2},
		{ID: "ing-4", Name: "Natural vanillin", Type: TypeAromatic, Classification: Natural, Price: 120.00, Reference: "SAR001", Density: 1.056, VanillinRate: 100, CAS: "121-33-5", Order: 3},
		{ID: "ing-5", Name: "Bitter almond essential oil", Type: TypeAromatic, Classification: Natural, IsExtract: true, ExtractSource: "almond", Price: 250.00, Reference: "EXT002", Density: 0.960, Order: 4},
		{ID: "ing-6", Name: "Natural benzaldehyde", Type: TypeAromatic, Classification: Natural, Price: 85.00, Reference: "SAR002", Density: 1.044, CAS: "100-52-7", Order: 5},
		{ID: "ing-7", Name: "Synthetic vanillin", Type: TypeAromatic, Classification: Synthetic, Price: 25.00, Reference: "SAS001", Density: 1.056, VanillinRate: 100, CAS: "121-33-5", Order: 6},
	}
}

func findIngredient(ingredients []Ingredient, id string) (int, bool) {
	for i := range ingredients {
		if ingredients[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
