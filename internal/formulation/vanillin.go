package formulation

// VanillinBeanReference is the vanillin content of a whole vanilla bean, in
// percent by mass.
const VanillinBeanReference = 1.6

// VanillinProfile expresses a formula's vanillin content.
type VanillinProfile struct {
	// Percentage is the vanillin content of the active mass.
	Percentage float64 `json:"percentage"`
	// Fold is Percentage relative to a whole bean.
	Fold float64 `json:"fold"`
	// BeansEquiv is grams of bean equivalent per kilogram of formula.
	BeansEquiv float64 `json:"beansEquiv"`
}

// Vanillin weights each ingredient's vanillin rate by its effective mass
// (mass × dilution).
func Vanillin(cells Cells, ingredients []Ingredient, qspID string, targetMass float64) VanillinProfile {
	var totalEffective, weighted float64
	for _, l := range activeLines(cells, ingredients, qspID, targetMass) {
		eff := l.effective()
		if eff <= 0 {
			continue
		}
		totalEffective += eff
		weighted += eff * clamp(l.ingredient.VanillinRate, 0, 100)
	}
	var p VanillinProfile
	if totalEffective > 0 {
		p.Percentage = weighted / totalEffective
	}
	p.Fold = p.Percentage / VanillinBeanReference
	p.BeansEquiv = p.Fold * 100
	return p
}
