package formulation

// Density returns the mass-weighted average density of a trial in g/mL.
// Ingredients without a density are left out of both sums; 0 is returned when
// nothing contributes.
func Density(cells Cells, ingredients []Ingredient, qspID string, targetMass float64) float64 {
	var totalMass, weighted float64
	for _, l := range activeLines(cells, ingredients, qspID, targetMass) {
		density := nonNegative(l.ingredient.Density)
		if density == 0 {
			continue
		}
		totalMass += l.mass
		weighted += l.mass * density
	}
	if totalMass <= 0 {
		return 0
	}
	return weighted / totalMass
}

// Volume converts a mass in grams to millilitres. It returns 0 when the
// density is unknown.
func Volume(mass, density float64) float64 {
	mass, density = nonNegative(mass), nonNegative(density)
	if density == 0 {
		return 0
	}
	return mass / density
}
