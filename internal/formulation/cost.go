package formulation

// CostBreakdown splits the cost of a trial between carriers and flavouring
// ingredients. Total is always Support + Aromatic.
type CostBreakdown struct {
	Total    float64 `json:"total"`
	Support  float64 `json:"support"`
	Aromatic float64 `json:"aromatic"`
}

// Cost prices a trial: price (per kg) × dilution × mass (g) / 1000 for every
// ingredient with a positive active mass. Dilution is applied because the
// cost follows the active substance.
func Cost(cells Cells, ingredients []Ingredient, qspID string, targetMass float64) CostBreakdown {
	var out CostBreakdown
	for _, l := range activeLines(cells, ingredients, qspID, targetMass) {
		cost := nonNegative(l.ingredient.Price) * l.effective() / 1000
		if l.ingredient.Type == TypeAromatic {
			out.Aromatic += cost
		} else {
			out.Support += cost
		}
	}
	out.Total = out.Support + out.Aromatic
	return out
}
