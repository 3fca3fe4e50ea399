package formulation

// WeighingLine is one entry of the bench checklist.
type WeighingLine struct {
	Ingredient Ingredient `json:"ingredient"`
	Mass       float64    `json:"mass"`
	Dilution   Dilution   `json:"dilution"`
	QSP        bool       `json:"qsp"`
	Weighed    bool       `json:"weighed"`
}

// WeighingPlan lists what has to be weighed for a trial.
type WeighingPlan struct {
	Lines    []WeighingLine `json:"lines"`
	Weighed  int            `json:"weighed"`
	Total    int            `json:"total"`
	Progress float64        `json:"progress"`
}

// Complete reports whether every line has been checked off.
func (p WeighingPlan) Complete() bool { return p.Total > 0 && p.Weighed == p.Total }

// PlanWeighing lists the ingredients with a positive active mass, plus the QSP
// ingredient even when nothing is left to fill, in ingredient order.
func PlanWeighing(trial Trial, ingredients []Ingredient, qspID string) WeighingPlan {
	resolved := ResolveQSP(trial.Cells, qspID, trial.TargetMass)
	plan := WeighingPlan{Lines: []WeighingLine{}}
	for _, ing := range ingredients {
		cell := trial.Cells.Get(ing.ID)
		isQSP := qspID != "" && ing.ID == qspID
		mass := resolved
		if !isQSP {
			m, ok := cell.FixedMass()
			if !ok || !(m > 0) {
				continue
			}
			mass = m
		}
		weighed := trial.Weighed[ing.ID]
		plan.Lines = append(plan.Lines, WeighingLine{
			Ingredient: ing,
			Mass:       mass,
			Dilution:   cell.Strength(),
			QSP:        isQSP,
			Weighed:    weighed,
		})
		if weighed {
			plan.Weighed++
		}
	}
	plan.Total = len(plan.Lines)
	if plan.Total > 0 {
		plan.Progress = float64(plan.Weighed) / float64(plan.Total) * 100
	}
	return plan
}
