package formulation_test

import (
	"math"
	"testing"

	"aromasheet/internal/formulation"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestStepDilutionTwoSteps(t *testing.T) {
	mass, d := formulation.StepDilution(0.002, 1)
	if !approx(mass, 0.2) {
		t.Fatalf("expected mass 0.2, got %v", mass)
	}
	if d != 0.01 {
		t.Fatalf("expected dilution 0.01, got %v", d)
	}
}

func TestStepDilutionLeavesCompliantMass(t *testing.T) {
	cases := []struct {
		name string
		mass float64
		d    formulation.Dilution
	}{
		{"at threshold", 0.03, 1},
		{"large", 12.5, 0.1},
		{"zero", 0, 1},
		{"negative", -1, 1},
		{"unknown dilution", 0.001, 0.5},
	}
	for _, tc := range cases {
		mass, d := formulation.StepDilution(tc.mass, tc.d)
		if mass != tc.mass || d != tc.d {
			t.Fatalf("%s: expected (%v, %v) unchanged, got (%v, %v)", tc.name, tc.mass, tc.d, mass, d)
		}
	}
}

func TestStepDilutionStopsAtWeakestStep(t *testing.T) {
	mass, d := formulation.StepDilution(1e-12, 1)
	if d != 0.000001 {
		t.Fatalf("expected weakest dilution, got %v", d)
	}
	if !approx(mass, 1e-6) {
		t.Fatalf("expected mass 1e-6, got %v", mass)
	}
}

func TestParseDilution(t *testing.T) {
	cases := map[string]struct {
		want formulation.Dilution
		ok   bool
	}{
		"1%":      {0.01, true},
		"100%":    {1, true},
		"0.1":     {0.1, true},
		" 0.01 ":  {0.01, true},
		"0.0001%": {0.000001, true},
		"2%":      {0, false},
		"abc":     {0, false},
	}
	for in, tc := range cases {
		got, ok := formulation.ParseDilution(in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseDilution(%q) = (%v, %v), want (%v, %v)", in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDilutionString(t *testing.T) {
	if got := formulation.Dilution(0.01).String(); got != "1%" {
		t.Fatalf("expected 1%%, got %q", got)
	}
	if got := formulation.Dilution(1).String(); got != "100%" {
		t.Fatalf("expected 100%%, got %q", got)
	}
}

func TestCellsGetDefaults(t *testing.T) {
	cell := formulation.Cells{}.Get("missing")
	if cell.Kind != formulation.CellFixed || cell.Mass != 0 || cell.Dilution != 1 {
		t.Fatalf("unexpected default cell %#v", cell)
	}
	if cell.Effective() != 0 {
		t.Fatalf("expected zero effective quantity, got %v", cell.Effective())
	}
}

func TestQSPCellHasNoTrustedMass(t *testing.T) {
	cell := formulation.Cell{Kind: formulation.CellQSP, Mass: 42, Dilution: 1}
	if _, ok := cell.FixedMass(); ok {
		t.Fatal("expected qsp cell mass to be untrusted")
	}
	if cell.Effective() != 0 {
		t.Fatalf("expected qsp effective 0, got %v", cell.Effective())
	}
	fixed := formulation.Cell{Kind: formulation.CellFixed, Mass: 5, Dilution: 0.1}
	if !approx(fixed.Effective(), 0.5) {
		t.Fatalf("expected effective 0.5, got %v", fixed.Effective())
	}
}
