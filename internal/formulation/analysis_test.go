package formulation_test

import (
	"testing"

	"aromasheet/internal/formulation"
)

func scenarioSheet(t *testing.T) formulation.Sheet {
	t.Helper()
	sheet := formulation.NewSheet(formulation.NewSheetOptions{
		Trials: 1,
		Ingredients: []formulation.Ingredient{
			{ID: "eth", Name: "Ethanol", Type: formulation.TypeSupport, Classification: formulation.Natural, Price: 2.5, Density: 0.789},
			{ID: "van", Name: "Vanilla extract", Type: formulation.TypeAromatic, Classification: formulation.Natural, IsExtract: true, ExtractSource: "vanilla", Price: 200, Density: 0.92, VanillinRate: 0.8},
		},
		QSPIngredientID: "eth",
	})
	sheet = formulation.Reduce(sheet, formulation.SetMass{Trial: 1, IngredientID: "eth", Mass: 80})
	sheet = formulation.Reduce(sheet, formulation.SetMass{Trial: 1, IngredientID: "van", Mass: 10})
	return sheet
}

func TestAnalyzeEndToEnd(t *testing.T) {
	sheet := scenarioSheet(t)
	a, ok := formulation.Analyze(sheet, 1, formulation.PricingOptions{})
	if !ok {
		t.Fatal("expected trial 1 to be analyzable")
	}
	if a.QSPMass != 90 {
		t.Fatalf("expected qsp 90, got %v", a.QSPMass)
	}
	if !approx(a.Cost.Support, 0.225) || !approx(a.Cost.Aromatic, 2.0) || !approx(a.Cost.Total, 2.225) {
		t.Fatalf("unexpected cost %#v", a.Cost)
	}
	if a.Classification.Label != "Natural aroma of vanilla" {
		t.Fatalf("unexpected label %q", a.Classification.Label)
	}
	wantDensity := (90*0.789 + 10*0.92) / 100
	if !approx(a.Density, wantDensity) {
		t.Fatalf("expected density %v, got %v", wantDensity, a.Density)
	}
	if !approx(a.Vanillin.Percentage, 0.08) {
		t.Fatalf("expected vanillin 0.08%%, got %v", a.Vanillin.Percentage)
	}
	if !approx(a.Vanillin.Fold, 0.05) || !approx(a.Vanillin.BeansEquiv, 5) {
		t.Fatalf("unexpected vanillin profile %#v", a.Vanillin)
	}
	if !approx(a.Volume, 100/wantDensity) {
		t.Fatalf("unexpected volume %v", a.Volume)
	}
}

func TestAnalyzePricing(t *testing.T) {
	sheet := scenarioSheet(t)
	a, _ := formulation.Analyze(sheet, 1, formulation.PricingOptions{TargetSalePrice: 50, Factor: 2.5})
	if !approx(a.CostPerKg.Total, 22.25) {
		t.Fatalf("expected 22.25 per kg, got %v", a.CostPerKg.Total)
	}
	if !approx(a.SalePrice, 55.625) {
		t.Fatalf("expected sale price 55.625, got %v", a.SalePrice)
	}
	if !approx(a.TargetCost, 20) {
		t.Fatalf("expected target cost 20, got %v", a.TargetCost)
	}
	if !approx(a.Margin.Margin, 27.75) || a.Margin.OverBudget {
		t.Fatalf("unexpected margin %#v", a.Margin)
	}

	over := formulation.Margin(60, 50)
	if !over.OverBudget || !approx(over.Percent, -20) {
		t.Fatalf("expected over budget margin, got %#v", over)
	}
	if got := formulation.Margin(10, 0); got != (formulation.MarginAnalysis{}) {
		t.Fatalf("expected empty analysis without target, got %#v", got)
	}
}

func TestAnalyzeUnknownTrial(t *testing.T) {
	sheet := scenarioSheet(t)
	if _, ok := formulation.Analyze(sheet, 2, formulation.PricingOptions{}); ok {
		t.Fatal("expected inactive trial to be rejected")
	}
}

func TestCostAppliesDilution(t *testing.T) {
	ingredients := []formulation.Ingredient{
		{ID: "van", Type: formulation.TypeAromatic, Price: 200},
	}
	cells := formulation.Cells{"van": {Kind: formulation.CellFixed, Mass: 10, Dilution: 0.1}}
	cost := formulation.Cost(cells, ingredients, "", 100)
	if !approx(cost.Aromatic, 0.2) {
		t.Fatalf("expected 0.2, got %v", cost.Aromatic)
	}
}

func TestDensityIgnoresUnknownDensity(t *testing.T) {
	ingredients := []formulation.Ingredient{
		{ID: "a", Density: 0},
		{ID: "b", Density: 1.2},
	}
	cells := formulation.Cells{"a": fixed(50), "b": fixed(50)}
	if got := formulation.Density(cells, ingredients, "", 100); !approx(got, 1.2) {
		t.Fatalf("expected 1.2, got %v", got)
	}
	if got := formulation.Density(formulation.Cells{}, ingredients, "", 100); got != 0 {
		t.Fatalf("expected 0 without mass, got %v", got)
	}
}

func TestPlanWeighingProgress(t *testing.T) {
	sheet := scenarioSheet(t)
	sheet = formulation.Reduce(sheet, formulation.ToggleWeighed{Trial: 1, IngredientID: "van"})
	trial, _ := sheet.Trial(1)
	plan := formulation.PlanWeighing(trial, sheet.Ingredients, sheet.QSPIngredientID)
	if plan.Total != 2 || plan.Weighed != 1 || !approx(plan.Progress, 50) {
		t.Fatalf("unexpected plan %#v", plan)
	}
	if !plan.Lines[0].QSP || plan.Lines[0].Mass != 90 {
		t.Fatalf("expected qsp line first with 90 g, got %#v", plan.Lines[0])
	}
	if plan.Complete() {
		t.Fatal("expected plan to be incomplete")
	}

	sheet = formulation.Reduce(sheet, formulation.ToggleWeighed{Trial: 1, IngredientID: "eth"})
	trial, _ = sheet.Trial(1)
	if !formulation.PlanWeighing(trial, sheet.Ingredients, sheet.QSPIngredientID).Complete() {
		t.Fatal("expected plan to be complete")
	}
}
