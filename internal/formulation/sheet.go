package formulation

import (
	"strconv"
	"strings"
)

const (
	// MaxTrials is the hard ceiling on trials per sheet.
	MaxTrials = 10
	// DefaultTargetMass is the batch size of a new trial, in grams.
	DefaultTargetMass = 100.0
	// DefaultTrialCount is the number of trials a new sheet starts with.
	DefaultTrialCount = 5
)

// NoteField selects one of the three free-text notes of a trial.
type NoteField string

const (
	NoteSensory   NoteField = "sensory"
	NoteTechnical NoteField = "technical"
	NoteComments  NoteField = "comments"
)

// Notes are the free-text observations attached to a trial.
type Notes struct {
	Sensory   string `json:"sensory"`
	Technical string `json:"technical"`
	Comments  string `json:"comments"`
}

// SensoryScore rates one descriptor from 0 to 10. Descriptor holds the
// descriptor name, not its id.
type SensoryScore struct {
	Descriptor string `json:"descriptor"`
	Value      int    `json:"value"`
}

// SensoryDescriptor is an entry of the sheet-wide descriptor list.
type SensoryDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trial is one formulation attempt.
type Trial struct {
	Name       string          `json:"name"`
	TargetMass float64         `json:"targetMass"`
	Cells      Cells           `json:"data"`
	Weighed    map[string]bool `json:"weighedStates"`
	Notes      Notes           `json:"notes"`
	Sensory    []SensoryScore  `json:"sensoryProfile"`
}

// DefaultTrialName is the name given to trial n when it has none.
func DefaultTrialName(n int) string {
	return "Trial " + strconv.Itoa(n)
}

// NewTrial returns an empty trial with the given ordinal and target mass.
func NewTrial(n int, targetMass float64) Trial {
	if !(targetMass > 0) {
		targetMass = DefaultTargetMass
	}
	return Trial{
		Name:       DefaultTrialName(n),
		TargetMass: targetMass,
		Cells:      Cells{},
		Weighed:    map[string]bool{},
		Sensory:    []SensoryScore{},
	}
}

func (t Trial) clone() Trial {
	out := t
	out.Cells = t.Cells.clone()
	out.Weighed = make(map[string]bool, len(t.Weighed))
	for k, v := range t.Weighed {
		out.Weighed[k] = v
	}
	out.Sensory = append([]SensoryScore{}, t.Sensory...)
	return out
}

// Score returns the value recorded for a descriptor name.
func (t Trial) Score(descriptor string) (int, bool) {
	for _, s := range t.Sensory {
		if s.Descriptor == descriptor {
			return s.Value, true
		}
	}
	return 0, false
}

// Project is the header of a sheet.
type Project struct {
	Reference   string `json:"reference"`
	Date        string `json:"date"`
	Responsible string `json:"responsible"`
	Client      string `json:"client"`
	Dosage      string `json:"dosage"`
	Application string `json:"application"`
}

// Sheet is the full editable state of a formulation worksheet.
type Sheet struct {
	Project            Project             `json:"projectInfo"`
	Ingredients        []Ingredient        `json:"ingredients"`
	Trials             map[int]Trial       `json:"trials"`
	ActiveTrialCount   int                 `json:"activeTrialCount"`
	QSPIngredientID    string              `json:"qspIngredientId,omitempty"`
	SensoryDescriptors []SensoryDescriptor `json:"sensoryDescriptors"`
	SelectedTrial      int                 `json:"selectedTrial"`
	References         []string            `json:"existingReferences,omitempty"`
	Responsibles       []string            `json:"projectResponsibles,omitempty"`
	// DefaultTargetMass is the batch size given to trials added later.
	DefaultTargetMass float64 `json:"defaultTargetMass,omitempty"`
}

// trialTargetMass is the target mass of a trial created on s.
func (s Sheet) trialTargetMass() float64 {
	if s.DefaultTargetMass > 0 {
		return s.DefaultTargetMass
	}
	return DefaultTargetMass
}

// DefaultSensoryDescriptors seeds the descriptor list of a new sheet.
func DefaultSensoryDescriptors() []SensoryDescriptor {
	return []SensoryDescriptor{
		{ID: "desc-1", Name: "Sweet"},
		{ID: "desc-2", Name: "Sour"},
		{ID: "desc-3", Name: "Bitter"},
		{ID: "desc-4", Name: "Salty"},
		{ID: "desc-5", Name: "Umami"},
	}
}

// NewSheetOptions parameterizes NewSheet. Zero values select the defaults.
type NewSheetOptions struct {
	Project    Project
	Trials     int
	TargetMass float64
	// Ingredients replaces DefaultIngredients when non-nil.
	Ingredients []Ingredient
	// QSPIngredientID defaults to the first ingredient. Use NoQSP to start
	// without a designation.
	QSPIngredientID string
}

// NoQSP is the QSPIngredientID option value for a sheet without a filler.
const NoQSP = "-"

// NewSheet builds the initial state of a worksheet.
func NewSheet(opts NewSheetOptions) Sheet {
	count := opts.Trials
	if count <= 0 {
		count = DefaultTrialCount
	}
	if count > MaxTrials {
		count = MaxTrials
	}
	ingredients := opts.Ingredients
	if ingredients == nil {
		ingredients = DefaultIngredients()
	}
	target := opts.TargetMass
	if !(target > 0) {
		target = DefaultTargetMass
	}
	s := Sheet{
		Project:            opts.Project,
		Ingredients:        make([]Ingredient, 0, len(ingredients)),
		Trials:             make(map[int]Trial, count),
		ActiveTrialCount:   count,
		SensoryDescriptors: DefaultSensoryDescriptors(),
		SelectedTrial:      1,
		DefaultTargetMass:  target,
	}
	for i, ing := range ingredients {
		ing = ing.sanitized()
		ing.Order = i
		s.Ingredients = append(s.Ingredients, ing)
	}
	for n := 1; n <= count; n++ {
		s.Trials[n] = NewTrial(n, target)
	}
	switch opts.QSPIngredientID {
	case NoQSP:
	case "":
		if len(s.Ingredients) > 0 {
			s.QSPIngredientID = s.Ingredients[0].ID
		}
	default:
		if _, ok := findIngredient(s.Ingredients, opts.QSPIngredientID); ok {
			s.QSPIngredientID = opts.QSPIngredientID
		}
	}
	return s
}

// Trial returns trial n when it is within the active range.
func (s Sheet) Trial(n int) (Trial, bool) {
	if n < 1 || n > s.ActiveTrialCount {
		return Trial{}, false
	}
	t, ok := s.Trials[n]
	return t, ok
}

// Ingredient looks an ingredient up by id.
func (s Sheet) Ingredient(id string) (Ingredient, bool) {
	idx, ok := findIngredient(s.Ingredients, id)
	if !ok {
		return Ingredient{}, false
	}
	return s.Ingredients[idx], true
}

// QSPMass resolves the live QSP mass of trial n.
func (s Sheet) QSPMass(n int) float64 {
	t, ok := s.Trial(n)
	if !ok {
		return 0
	}
	return ResolveQSP(t.Cells, s.QSPIngredientID, t.TargetMass)
}

// Clone returns a deep copy sharing no maps or slices with s.
func (s Sheet) Clone() Sheet {
	out := s
	out.Ingredients = append([]Ingredient(nil), s.Ingredients...)
	out.SensoryDescriptors = append([]SensoryDescriptor(nil), s.SensoryDescriptors...)
	out.References = append([]string(nil), s.References...)
	out.Responsibles = append([]string(nil), s.Responsibles...)
	out.Trials = make(map[int]Trial, len(s.Trials))
	for n, t := range s.Trials {
		out.Trials[n] = t.clone()
	}
	return out
}

// Normalize repairs a sheet read from storage: it fills missing maps and
// trials, clamps the trial count and selection, canonicalizes dilutions, drops
// cells of unknown ingredients, and aligns cell kinds with the QSP
// designation.
func (s Sheet) Normalize() Sheet {
	out := s.Clone()
	if out.ActiveTrialCount < 1 {
		out.ActiveTrialCount = 1
	}
	if out.ActiveTrialCount > MaxTrials {
		out.ActiveTrialCount = MaxTrials
	}
	for i := range out.Ingredients {
		out.Ingredients[i] = out.Ingredients[i].sanitized()
	}
	if _, ok := findIngredient(out.Ingredients, out.QSPIngredientID); !ok {
		out.QSPIngredientID = ""
	}
	if out.SensoryDescriptors == nil {
		out.SensoryDescriptors = []SensoryDescriptor{}
	}
	if !(out.DefaultTargetMass > 0) {
		out.DefaultTargetMass = 0
	}
	for n := 1; n <= out.ActiveTrialCount; n++ {
		t, ok := out.Trials[n]
		if !ok {
			out.Trials[n] = NewTrial(n, out.trialTargetMass())
			continue
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = DefaultTrialName(n)
		}
		if !(t.TargetMass > 0) {
			t.TargetMass = out.trialTargetMass()
		}
		cells := make(Cells, len(t.Cells))
		for id, c := range t.Cells {
			if _, known := findIngredient(out.Ingredients, id); !known {
				continue
			}
			if d, ok := CanonicalDilution(float64(c.Dilution)); ok {
				c.Dilution = d
			} else {
				c.Dilution = 1
			}
			c.Mass = nonNegative(c.Mass)
			c.Kind = CellFixed
			if id == out.QSPIngredientID {
				c.Kind = CellQSP
			}
			cells[id] = c
		}
		t.Cells = cells
		if t.Weighed == nil {
			t.Weighed = map[string]bool{}
		}
		if t.Sensory == nil {
			t.Sensory = []SensoryScore{}
		}
		out.Trials[n] = t
	}
	if out.SelectedTrial < 1 || out.SelectedTrial > out.ActiveTrialCount {
		out.SelectedTrial = 1
	}
	return out
}
