package formulation

// PricingOptions carries the commercial inputs of an analysis.
type PricingOptions struct {
	// TargetSalePrice is the intended sale price per kilogram. Zero disables
	// the margin analysis.
	TargetSalePrice float64
	// Factor is the multiplier from cost to sale price.
	Factor float64
}

// Analysis bundles every derived value of one trial.
type Analysis struct {
	Trial          int             `json:"trial"`
	Name           string          `json:"name"`
	TargetMass     float64         `json:"targetMass"`
	QSPIngredient  string          `json:"qspIngredientId,omitempty"`
	QSPMass        float64         `json:"qspMass"`
	Cost           CostBreakdown   `json:"cost"`
	CostPerKg      CostBreakdown   `json:"costPerKg"`
	SalePrice      float64         `json:"salePrice"`
	TargetCost     float64         `json:"targetCost"`
	Margin         MarginAnalysis  `json:"margin"`
	Density        float64         `json:"density"`
	Volume         float64         `json:"volume"`
	Vanillin       VanillinProfile `json:"vanillin"`
	Classification Classification  `json:"classification"`
	Weighing       WeighingPlan    `json:"weighing"`
}

// Analyze derives everything for trial n. The boolean is false when n is not
// an active trial.
func Analyze(s Sheet, n int, pricing PricingOptions) (Analysis, bool) {
	t, ok := s.Trial(n)
	if !ok {
		return Analysis{}, false
	}
	qsp := s.QSPIngredientID
	a := Analysis{
		Trial:          n,
		Name:           t.Name,
		TargetMass:     t.TargetMass,
		QSPIngredient:  qsp,
		QSPMass:        ResolveQSP(t.Cells, qsp, t.TargetMass),
		Cost:           Cost(t.Cells, s.Ingredients, qsp, t.TargetMass),
		Density:        Density(t.Cells, s.Ingredients, qsp, t.TargetMass),
		Vanillin:       Vanillin(t.Cells, s.Ingredients, qsp, t.TargetMass),
		Classification: Classify(t.Cells, s.Ingredients, qsp, t.TargetMass),
		Weighing:       PlanWeighing(t, s.Ingredients, qsp),
	}
	a.CostPerKg = PerKilogram(a.Cost, t.TargetMass)
	a.Volume = Volume(t.TargetMass, a.Density)
	if pricing.Factor > 0 {
		a.SalePrice = SalePrice(a.CostPerKg.Total, pricing.Factor)
		a.TargetCost = TargetCost(pricing.TargetSalePrice, pricing.Factor)
	}
	a.Margin = Margin(a.CostPerKg.Total, pricing.TargetSalePrice)
	return a, true
}
