package formulation

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// newID generates ingredient and descriptor ids. Tests replace it.
var newID = uuid.NewString

// Reduce applies one action and returns the resulting sheet. The input is
// never modified: touched trials, maps, and slices are copied first. Actions
// that name an unknown trial or ingredient, carry an invalid value, or would
// exceed a capacity limit return s unchanged.
func Reduce(s Sheet, a Action) Sheet {
	switch a := a.(type) {
	case SetMass:
		return setMass(s, a)
	case SetDilution:
		return setDilution(s, a)
	case SetTargetMass:
		return setTargetMass(s, a)
	case DesignateQSP:
		return designateQSP(s, a)
	case SelectTrial:
		return selectTrial(s, a)
	case CopyTrial:
		return copyTrial(s, a)
	case AddTrial:
		return addTrial(s)
	case AddIngredient:
		return addIngredient(s, a)
	case UpdateIngredient:
		return updateIngredient(s, a)
	case DeleteIngredient:
		return deleteIngredient(s, a)
	case ToggleWeighed:
		return toggleWeighed(s, a)
	case ResetWeighed:
		return editTrial(s, a.Trial, func(t *Trial) bool {
			t.Weighed = map[string]bool{}
			return true
		})
	case SetTrialName:
		return editTrial(s, a.Trial, func(t *Trial) bool {
			t.Name = strings.TrimSpace(a.Name)
			if t.Name == "" {
				t.Name = DefaultTrialName(a.Trial)
			}
			return true
		})
	case SetNotes:
		return setNotes(s, a)
	case SetSensoryValue:
		return setSensoryValue(s, a)
	case AddDescriptor:
		return addDescriptor(s, a)
	case RemoveDescriptor:
		return removeDescriptor(s, a)
	case ApplySensoryPreset:
		return applySensoryPreset(s, a)
	case SetProject:
		out := s
		out.Project = trimProject(a.Project)
		return out
	case AddReference:
		out := s
		out.References = appendUnique(s.References, a.Reference)
		return out
	case AddResponsible:
		out := s
		out.Responsibles = appendUnique(s.Responsibles, a.Name)
		return out
	}
	return s
}

func copyTrials(trials map[int]Trial) map[int]Trial {
	out := make(map[int]Trial, len(trials)+1)
	for n, t := range trials {
		out[n] = t
	}
	return out
}

// editTrial runs fn on a private copy of trial n and installs the result.
// When fn returns false the edit is abandoned and s is returned as is.
func editTrial(s Sheet, n int, fn func(t *Trial) bool) Sheet {
	t, ok := s.Trial(n)
	if !ok {
		return s
	}
	t = t.clone()
	if !fn(&t) {
		return s
	}
	out := s
	out.Trials = copyTrials(s.Trials)
	out.Trials[n] = t
	return out
}

// cellFor returns the cell of id in t with its kind aligned to the QSP
// designation.
func (s Sheet) cellFor(t Trial, id string) Cell {
	c := t.Cells.Get(id)
	if id == s.QSPIngredientID {
		c.Kind = CellQSP
	} else {
		c.Kind = CellFixed
	}
	return c
}

func setMass(s Sheet, a SetMass) Sheet {
	if _, ok := findIngredient(s.Ingredients, a.IngredientID); !ok {
		return s
	}
	mass := nonNegative(a.Mass)
	return editTrial(s, a.Trial, func(t *Trial) bool {
		c := s.cellFor(*t, a.IngredientID)
		c.Mass = mass
		if !c.IsQSP() && !a.Raw {
			c.Mass, c.Dilution = StepDilution(mass, c.Dilution)
		}
		t.Cells[a.IngredientID] = c
		return true
	})
}

func setDilution(s Sheet, a SetDilution) Sheet {
	if _, ok := findIngredient(s.Ingredients, a.IngredientID); !ok {
		return s
	}
	d, ok := CanonicalDilution(float64(a.Dilution))
	if !ok {
		return s
	}
	return editTrial(s, a.Trial, func(t *Trial) bool {
		c := s.cellFor(*t, a.IngredientID)
		c.Dilution = d
		t.Cells[a.IngredientID] = c
		return true
	})
}

func setTargetMass(s Sheet, a SetTargetMass) Sheet {
	mass := a.Mass
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass <= 0 {
		return s
	}
	return editTrial(s, a.Trial, func(t *Trial) bool {
		if !a.Rescale {
			t.TargetMass = mass
			return true
		}
		old := t.TargetMass
		if old <= 0 || old == mass {
			return false
		}
		ratio := mass / old
		for id, c := range t.Cells {
			if id == s.QSPIngredientID || c.IsQSP() {
				continue
			}
			c.Mass *= ratio
			t.Cells[id] = c
		}
		t.TargetMass = mass
		return true
	})
}

// designateQSP freezes the outgoing filler in every trial before handing the
// role to the new ingredient, so that switching never loses a computed mass.
func designateQSP(s Sheet, a DesignateQSP) Sheet {
	next := strings.TrimSpace(a.IngredientID)
	prev := s.QSPIngredientID
	if next == prev {
		return s
	}
	if next != "" {
		if _, ok := findIngredient(s.Ingredients, next); !ok {
			return s
		}
	}
	out := s
	out.QSPIngredientID = next
	out.Trials = make(map[int]Trial, len(s.Trials))
	for n, t := range s.Trials {
		t = t.clone()
		if prev != "" {
			resolved := ResolveQSP(t.Cells, prev, t.TargetMass)
			c, exists := t.Cells[prev]
			switch {
			case resolved > 0:
				c = t.Cells.Get(prev)
				c.Kind = CellFixed
				c.Mass = resolved
				t.Cells[prev] = c
			case exists:
				c.Kind = CellFixed
				c.Dilution = c.Strength()
				t.Cells[prev] = c
			}
		}
		if c, ok := t.Cells[next]; ok && next != "" {
			c.Kind = CellQSP
			t.Cells[next] = c
		}
		out.Trials[n] = t
	}
	return out
}

func selectTrial(s Sheet, a SelectTrial) Sheet {
	if a.Trial < 1 || a.Trial > s.ActiveTrialCount {
		return s
	}
	out := s
	if qsp := s.QSPIngredientID; qsp != "" {
		if resolved := s.QSPMass(s.SelectedTrial); resolved > 0 {
			out = editTrial(s, s.SelectedTrial, func(t *Trial) bool {
				c := t.Cells.Get(qsp)
				c.Kind = CellQSP
				c.Mass = resolved
				t.Cells[qsp] = c
				return true
			})
		}
	}
	out.SelectedTrial = a.Trial
	return out
}

func copyTrial(s Sheet, a CopyTrial) Sheet {
	src, ok := s.Trials[a.From]
	if !ok || a.From < 1 || a.From > s.ActiveTrialCount {
		return s
	}
	if a.To < 1 || a.To > MaxTrials || a.To == a.From {
		return s
	}
	dst := src.clone()
	dst.Name = DefaultTrialName(a.To)
	if prev, ok := s.Trials[a.To]; ok && a.To <= s.ActiveTrialCount && strings.TrimSpace(prev.Name) != "" {
		dst.Name = prev.Name
	}
	out := s
	out.Trials = copyTrials(s.Trials)
	for n := s.ActiveTrialCount + 1; n < a.To; n++ {
		out.Trials[n] = NewTrial(n, s.trialTargetMass())
	}
	out.Trials[a.To] = dst
	if a.To > out.ActiveTrialCount {
		out.ActiveTrialCount = a.To
	}
	return out
}

func addTrial(s Sheet) Sheet {
	next := s.ActiveTrialCount + 1
	if next > MaxTrials {
		return s
	}
	out := s
	out.Trials = copyTrials(s.Trials)
	out.Trials[next] = NewTrial(next, s.trialTargetMass())
	out.ActiveTrialCount = next
	return out
}

func addIngredient(s Sheet, a AddIngredient) Sheet {
	ing := a.Ingredient.sanitized()
	if ing.ID == "" {
		ing.ID = newID()
	}
	if _, exists := findIngredient(s.Ingredients, ing.ID); exists {
		return s
	}
	ing.Order = len(s.Ingredients)
	out := s
	out.Ingredients = append(append(make([]Ingredient, 0, len(s.Ingredients)+1), s.Ingredients...), ing)
	return out
}

func updateIngredient(s Sheet, a UpdateIngredient) Sheet {
	idx, ok := findIngredient(s.Ingredients, a.Ingredient.ID)
	if !ok {
		return s
	}
	ing := a.Ingredient.sanitized()
	ing.Order = s.Ingredients[idx].Order
	out := s
	out.Ingredients = append([]Ingredient(nil), s.Ingredients...)
	out.Ingredients[idx] = ing
	return out
}

// deleteIngredient drops the ingredient everywhere. Deleting the filler clears
// the designation without freezing: its cells go away with it.
func deleteIngredient(s Sheet, a DeleteIngredient) Sheet {
	idx, ok := findIngredient(s.Ingredients, a.IngredientID)
	if !ok {
		return s
	}
	out := s
	out.Ingredients = make([]Ingredient, 0, len(s.Ingredients)-1)
	out.Ingredients = append(out.Ingredients, s.Ingredients[:idx]...)
	out.Ingredients = append(out.Ingredients, s.Ingredients[idx+1:]...)
	out.Trials = make(map[int]Trial, len(s.Trials))
	for n, t := range s.Trials {
		t = t.clone()
		delete(t.Cells, a.IngredientID)
		delete(t.Weighed, a.IngredientID)
		out.Trials[n] = t
	}
	if s.QSPIngredientID == a.IngredientID {
		out.QSPIngredientID = ""
	}
	return out
}

func toggleWeighed(s Sheet, a ToggleWeighed) Sheet {
	if _, ok := findIngredient(s.Ingredients, a.IngredientID); !ok {
		return s
	}
	return editTrial(s, a.Trial, func(t *Trial) bool {
		if t.Weighed[a.IngredientID] {
			delete(t.Weighed, a.IngredientID)
		} else {
			t.Weighed[a.IngredientID] = true
		}
		return true
	})
}

func setNotes(s Sheet, a SetNotes) Sheet {
	return editTrial(s, a.Trial, func(t *Trial) bool {
		switch a.Field {
		case NoteSensory:
			t.Notes.Sensory = a.Value
		case NoteTechnical:
			t.Notes.Technical = a.Value
		case NoteComments:
			t.Notes.Comments = a.Value
		default:
			return false
		}
		return true
	})
}

func setSensoryValue(s Sheet, a SetSensoryValue) Sheet {
	name := strings.TrimSpace(a.Descriptor)
	if name == "" {
		return s
	}
	value := clampScore(a.Value)
	return editTrial(s, a.Trial, func(t *Trial) bool {
		for i := range t.Sensory {
			if t.Sensory[i].Descriptor == name {
				t.Sensory[i].Value = value
				return true
			}
		}
		t.Sensory = append(t.Sensory, SensoryScore{Descriptor: name, Value: value})
		return true
	})
}

func descriptorByName(descriptors []SensoryDescriptor, name string) (SensoryDescriptor, bool) {
	for _, d := range descriptors {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return SensoryDescriptor{}, false
}

func addDescriptor(s Sheet, a AddDescriptor) Sheet {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return s
	}
	if _, exists := descriptorByName(s.SensoryDescriptors, name); exists {
		return s
	}
	id := strings.TrimSpace(a.ID)
	if id == "" {
		id = newID()
	}
	out := s
	out.SensoryDescriptors = append(append([]SensoryDescriptor(nil), s.SensoryDescriptors...), SensoryDescriptor{ID: id, Name: name})
	return out
}

func removeDescriptor(s Sheet, a RemoveDescriptor) Sheet {
	kept := make([]SensoryDescriptor, 0, len(s.SensoryDescriptors))
	for _, d := range s.SensoryDescriptors {
		if d.ID != a.ID {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(s.SensoryDescriptors) {
		return s
	}
	out := s
	out.SensoryDescriptors = kept
	return out
}

func applySensoryPreset(s Sheet, a ApplySensoryPreset) Sheet {
	preset, ok := LookupPreset(a.Preset)
	if !ok {
		return s
	}
	if _, ok := s.Trial(a.Trial); !ok {
		return s
	}
	descriptors := make([]SensoryDescriptor, 0, len(preset.Descriptors))
	profile := make([]SensoryScore, 0, len(preset.Descriptors))
	for _, p := range preset.Descriptors {
		d, ok := descriptorByName(s.SensoryDescriptors, p.Name)
		if !ok {
			d = SensoryDescriptor{ID: newID(), Name: p.Name}
		}
		descriptors = append(descriptors, SensoryDescriptor{ID: d.ID, Name: p.Name})
		profile = append(profile, SensoryScore{Descriptor: p.Name, Value: clampScore(p.Value)})
	}
	out := editTrial(s, a.Trial, func(t *Trial) bool {
		t.Sensory = profile
		return true
	})
	out.SensoryDescriptors = descriptors
	return out
}

func trimProject(p Project) Project {
	return Project{
		Reference:   strings.TrimSpace(p.Reference),
		Date:        strings.TrimSpace(p.Date),
		Responsible: strings.TrimSpace(p.Responsible),
		Client:      strings.TrimSpace(p.Client),
		Dosage:      strings.TrimSpace(p.Dosage),
		Application: strings.TrimSpace(p.Application),
	}
}

func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(append(make([]string, 0, len(list)+1), list...), value)
}
