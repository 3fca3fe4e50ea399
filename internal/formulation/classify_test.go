package formulation_test

import (
	"testing"

	"aromasheet/internal/formulation"
)

func extract(id, source string) formulation.Ingredient {
	return formulation.Ingredient{
		ID:             id,
		Name:           source + " extract",
		Type:           formulation.TypeAromatic,
		Classification: formulation.Natural,
		IsExtract:      true,
		ExtractSource:  source,
	}
}

func fixed(mass float64) formulation.Cell {
	return formulation.Cell{Kind: formulation.CellFixed, Mass: mass, Dilution: 1}
}

func TestClassifyEmptyIsNeutral(t *testing.T) {
	ingredients := []formulation.Ingredient{
		{ID: "eth", Name: "Ethanol", Type: formulation.TypeSupport},
	}
	got := formulation.Classify(formulation.Cells{"eth": fixed(50)}, ingredients, "", 100)
	if got.Label != "" || got.Class != formulation.ClassNone {
		t.Fatalf("expected neutral classification, got %#v", got)
	}
	if got.Sources == nil || len(got.Sources) != 0 {
		t.Fatalf("expected empty sources, got %#v", got.Sources)
	}
}

func TestClassifySyntheticIsAbsorbing(t *testing.T) {
	ingredients := []formulation.Ingredient{
		extract("van", "vanilla"),
		{ID: "syn", Name: "Synthetic vanillin", Type: formulation.TypeAromatic, Classification: formulation.Synthetic},
	}
	cells := formulation.Cells{"van": fixed(99.99), "syn": fixed(0.01)}
	got := formulation.Classify(cells, ingredients, "", 100)
	if got.Label != "Aroma" || got.Class != formulation.ClassAroma {
		t.Fatalf("expected generic aroma, got %#v", got)
	}
}

func TestClassifySingleExtract(t *testing.T) {
	cases := []struct {
		source string
		label  string
		local  string
	}{
		{"vanilla", "Natural aroma of vanilla", "Arôme naturel de vanilla (extrait de vanilla)"},
		{"orange", "Natural aroma of orange", "Arôme naturel d'orange (extrait d'orange)"},
	}
	for _, tc := range cases {
		ingredients := []formulation.Ingredient{
			{ID: "eth", Name: "Ethanol", Type: formulation.TypeSupport},
			extract("x", tc.source),
		}
		got := formulation.Classify(formulation.Cells{"x": fixed(10)}, ingredients, "eth", 100)
		if got.Label != tc.label {
			t.Fatalf("%s: expected label %q, got %q", tc.source, tc.label, got.Label)
		}
		if got.LocalLabel != tc.local {
			t.Fatalf("%s: expected local label %q, got %q", tc.source, tc.local, got.LocalLabel)
		}
		if got.Class != formulation.ClassNaturalAromaOf {
			t.Fatalf("%s: unexpected class %q", tc.source, got.Class)
		}
	}
}

func TestClassifyNaturalWithoutExtracts(t *testing.T) {
	ingredients := []formulation.Ingredient{
		{ID: "nv", Name: "Natural vanillin", Type: formulation.TypeAromatic, Classification: formulation.Natural},
	}
	got := formulation.Classify(formulation.Cells{"nv": fixed(1)}, ingredients, "", 100)
	if got.Label != "Natural aroma" || got.Class != formulation.ClassNaturalAroma {
		t.Fatalf("expected natural aroma, got %#v", got)
	}
}

func TestClassifyDominanceThreshold(t *testing.T) {
	ingredients := []formulation.Ingredient{extract("van", "vanilla"), extract("ora", "orange")}

	dominant := formulation.Classify(formulation.Cells{"van": fixed(96), "ora": fixed(4)}, ingredients, "", 100)
	if dominant.Label != "Natural aroma of vanilla" {
		t.Fatalf("expected dominant label, got %q", dominant.Label)
	}

	shared := formulation.Classify(formulation.Cells{"van": fixed(70), "ora": fixed(30)}, ingredients, "", 100)
	if shared.Label != "Natural aroma of vanilla with other natural aromas" {
		t.Fatalf("expected with-others label, got %q", shared.Label)
	}
	if shared.Class != formulation.ClassNaturalAromaOfWithOthers {
		t.Fatalf("unexpected class %q", shared.Class)
	}
	if len(shared.Sources) != 2 || shared.Sources[0].Source != "vanilla" || !approx(shared.Sources[0].Percentage, 70) {
		t.Fatalf("unexpected sources %#v", shared.Sources)
	}
}

func TestClassifyUsesEffectiveQuantity(t *testing.T) {
	ingredients := []formulation.Ingredient{extract("van", "vanilla"), extract("ora", "orange")}
	cells := formulation.Cells{
		"van": {Kind: formulation.CellFixed, Mass: 10, Dilution: 0.01},
		"ora": fixed(1),
	}
	got := formulation.Classify(cells, ingredients, "", 100)
	if got.Sources[0].Source != "orange" {
		t.Fatalf("expected orange to dominate once dilution applies, got %#v", got.Sources)
	}
}

func TestClassifyGroupsSourcesAndPutsUnsourcedLast(t *testing.T) {
	ingredients := []formulation.Ingredient{
		extract("a", "Vanilla "),
		extract("b", "vanilla"),
		{ID: "nv", Name: "Natural vanillin", Type: formulation.TypeAromatic, Classification: formulation.Natural},
	}
	cells := formulation.Cells{"a": fixed(5), "b": fixed(5), "nv": fixed(90)}
	got := formulation.Classify(cells, ingredients, "", 100)
	if len(got.Sources) != 2 {
		t.Fatalf("expected two buckets, got %#v", got.Sources)
	}
	if !approx(got.Sources[0].Percentage, 10) || !got.Sources[0].FromExtract {
		t.Fatalf("unexpected vanilla bucket %#v", got.Sources[0])
	}
	last := got.Sources[1]
	if !last.Unsourced || last.Source != formulation.UnsourcedLabel || !approx(last.Percentage, 90) {
		t.Fatalf("unexpected unsourced bucket %#v", last)
	}
	if got.Class != formulation.ClassNaturalAromaOfWithOthers {
		t.Fatalf("expected named source to drive the label, got %#v", got)
	}
}

func TestSourceKeyFoldsCaseAccentsAndSpacing(t *testing.T) {
	cases := map[string]string{
		"Vanille ":        "vanille",
		"vanille":         "vanille",
		"Fève  de\ttonka": "feve de tonka",
		"  ":              "",
		"ÉCORCE d'orange": "ecorce d'orange",
	}
	for in, want := range cases {
		if got := formulation.SourceKey(in); got != want {
			t.Fatalf("SourceKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyGroupsAccentVariants(t *testing.T) {
	ingredients := []formulation.Ingredient{
		extract("a", "Vanille "),
		extract("b", "vanillé"),
		extract("c", "fève  de tonka"),
		extract("d", "Fève de Tonka"),
	}
	cells := formulation.Cells{"a": fixed(30), "b": fixed(30), "c": fixed(20), "d": fixed(20)}
	got := formulation.Classify(cells, ingredients, "", 100)
	if len(got.Sources) != 2 {
		t.Fatalf("expected two buckets, got %#v", got.Sources)
	}
	if got.Sources[0].Source != "Vanille" || !approx(got.Sources[0].Percentage, 60) {
		t.Fatalf("unexpected first bucket %#v", got.Sources[0])
	}
	if !approx(got.Sources[1].Percentage, 40) {
		t.Fatalf("unexpected second bucket %#v", got.Sources[1])
	}
}

func TestPreposition(t *testing.T) {
	cases := map[string]string{
		"orange":   "d'orange",
		"Écorce":   "d'Écorce",
		"hibiscus": "d'hibiscus",
		"vanille":  "de vanille",
		" fraise ": "de fraise",
		"île":      "d'île",
	}
	for in, want := range cases {
		if got := formulation.Preposition(in); got != want {
			t.Fatalf("Preposition(%q) = %q, want %q", in, got, want)
		}
	}
}
