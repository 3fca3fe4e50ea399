package formulation

// ResolveQSP returns the mass of the QSP ingredient needed to bring the trial
// up to targetMass. Only the raw masses of the other ingredients count;
// dilution is ignored because the fill is physical. The result is never
// negative and is 0 when no QSP ingredient is designated.
func ResolveQSP(cells Cells, qspID string, targetMass float64) float64 {
	if qspID == "" {
		return 0
	}
	target := nonNegative(targetMass)
	var others float64
	for id, cell := range cells {
		if id == qspID {
			continue
		}
		if m, ok := cell.FixedMass(); ok && m > 0 {
			others += m
		}
	}
	if others >= target {
		return 0
	}
	return target - others
}

// line is one ingredient with its active mass in a trial.
type line struct {
	ingredient Ingredient
	cell       Cell
	mass       float64
	qsp        bool
}

func (l line) effective() float64 { return l.mass * float64(l.cell.Strength()) }

// activeLines applies the access pattern shared by every derivation: the QSP
// ingredient takes the resolved mass, every other ingredient its fixed mass,
// and non-positive masses are skipped. Lines follow ingredient order.
func activeLines(cells Cells, ingredients []Ingredient, qspID string, targetMass float64) []line {
	if len(cells) == 0 && qspID == "" {
		return nil
	}
	resolved := ResolveQSP(cells, qspID, targetMass)
	lines := make([]line, 0, len(ingredients))
	for _, ing := range ingredients {
		cell := cells.Get(ing.ID)
		isQSP := qspID != "" && ing.ID == qspID
		var mass float64
		if isQSP {
			mass = resolved
		} else if m, ok := cell.FixedMass(); ok {
			mass = m
		}
		if !(mass > 0) {
			continue
		}
		lines = append(lines, line{ingredient: ing, cell: cell, mass: mass, qsp: isQSP})
	}
	return lines
}
