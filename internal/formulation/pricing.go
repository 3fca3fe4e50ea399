package formulation

// PerKilogram scales a trial cost to currency per kilogram of formula.
func PerKilogram(cost CostBreakdown, targetMass float64) CostBreakdown {
	kg := nonNegative(targetMass) / 1000
	if kg == 0 {
		return CostBreakdown{}
	}
	out := CostBreakdown{Support: cost.Support / kg, Aromatic: cost.Aromatic / kg}
	out.Total = out.Support + out.Aromatic
	return out
}

// SalePrice applies a commercial factor to a cost.
func SalePrice(cost, factor float64) float64 {
	return finite(cost) * finite(factor)
}

// TargetCost is the highest cost that still reaches salePrice with factor.
func TargetCost(salePrice, factor float64) float64 {
	salePrice, factor = finite(salePrice), finite(factor)
	if salePrice == 0 || factor == 0 {
		return 0
	}
	return salePrice / factor
}

// MarginAnalysis compares a cost per kilogram against a target sale price.
type MarginAnalysis struct {
	TargetSalePrice float64 `json:"targetSalePrice"`
	Margin          float64 `json:"margin"`
	Percent         float64 `json:"percent"`
	OverBudget      bool    `json:"overBudget"`
}

// Margin returns a zero analysis when no target price is set.
func Margin(costPerKg, targetSalePrice float64) MarginAnalysis {
	target := nonNegative(targetSalePrice)
	if target == 0 {
		return MarginAnalysis{}
	}
	margin := target - finite(costPerKg)
	return MarginAnalysis{
		TargetSalePrice: target,
		Margin:          margin,
		Percent:         margin / target * 100,
		OverBudget:      costPerKg > target,
	}
}
