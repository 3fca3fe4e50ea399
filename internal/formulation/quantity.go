package formulation

import (
	"math"
	"strconv"
	"strings"
)

// Dilution is the strength multiplier of an entered mass: 1 is the pure
// material, 0.01 a 1% solution.
type Dilution float64

// Dilutions lists the supported steps from strongest to weakest.
var Dilutions = []Dilution{1, 0.1, 0.01, 0.001, 0.0001, 0.00001, 0.000001}

// AutoDilutionThreshold is the smallest mass, in grams, considered weighable.
// Smaller entries are moved to a weaker dilution by StepDilution.
const AutoDilutionThreshold = 0.03

func dilutionIndex(d Dilution) int {
	for i, step := range Dilutions {
		if math.Abs(float64(d-step)) <= float64(step)*1e-9 {
			return i
		}
	}
	return -1
}

// CanonicalDilution maps v onto the matching step of Dilutions.
func CanonicalDilution(v float64) (Dilution, bool) {
	idx := dilutionIndex(Dilution(v))
	if idx < 0 {
		return 0, false
	}
	return Dilutions[idx], true
}

// ParseDilution accepts either a multiplier ("0.01") or a percentage ("1%").
func ParseDilution(value string) (Dilution, bool) {
	s := strings.TrimSpace(value)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return CanonicalDilution(v)
}

// String renders the dilution as a strength percentage.
func (d Dilution) String() string {
	if d <= 0 {
		return "100%"
	}
	return strconv.FormatFloat(float64(d)*100, 'f', -1, 64) + "%"
}

func (d Dilution) orDefault() Dilution {
	if d <= 0 || math.IsNaN(float64(d)) {
		return 1
	}
	return d
}

// StepDilution trades strength for a weighable mass. While mass is positive
// and under AutoDilutionThreshold and a weaker step exists, the mass is
// multiplied by ten and the dilution moves one step down. Masses that are
// already weighable, and dilutions outside Dilutions, are returned unchanged.
func StepDilution(mass float64, d Dilution) (float64, Dilution) {
	if !(mass > 0) || mass >= AutoDilutionThreshold {
		return mass, d
	}
	idx := dilutionIndex(d.orDefault())
	if idx < 0 {
		return mass, d
	}
	for mass < AutoDilutionThreshold && idx < len(Dilutions)-1 {
		mass *= 10
		idx++
	}
	return mass, Dilutions[idx]
}

// CellKind tags how a cell's mass must be read.
type CellKind string

const (
	// CellFixed cells hold a user-entered (or frozen) mass that is ground truth.
	CellFixed CellKind = "fixed"
	// CellQSP cells belong to the QSP ingredient. Their Mass is only the last
	// frozen value; the live mass comes from ResolveQSP.
	CellQSP CellKind = "qsp"
)

// Cell is the quantity of one ingredient in one trial.
type Cell struct {
	Kind     CellKind `json:"kind,omitempty"`
	Mass     float64  `json:"mass"`
	Dilution Dilution `json:"dilution"`
}

// IsQSP reports whether the cell is computed by the QSP resolver.
func (c Cell) IsQSP() bool { return c.Kind == CellQSP }

// FixedMass returns the stored mass when it can be trusted.
func (c Cell) FixedMass() (float64, bool) {
	if c.IsQSP() {
		return 0, false
	}
	return finite(c.Mass), true
}

// Strength returns the dilution, reading an unset value as 1.
func (c Cell) Strength() Dilution { return c.Dilution.orDefault() }

// Effective is the active quantity of a fixed cell: mass × dilution.
func (c Cell) Effective() float64 {
	m, ok := c.FixedMass()
	if !ok {
		return 0
	}
	return m * float64(c.Strength())
}

// Cells maps ingredient ids to their quantity in a trial.
type Cells map[string]Cell

// Get returns the cell for id. A missing cell reads as {fixed, 0 g, 100%}.
func (m Cells) Get(id string) Cell {
	if c, ok := m[id]; ok {
		if c.Kind == "" {
			c.Kind = CellFixed
		}
		c.Dilution = c.Strength()
		return c
	}
	return Cell{Kind: CellFixed, Dilution: 1}
}

func (m Cells) clone() Cells {
	out := make(Cells, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	v = finite(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
