package formulation

// Action is an edit request understood by Reduce. The set of actions is
// closed: only the types in this file implement it.
type Action interface {
	// Kind is a stable name for logs and notices.
	Kind() string
	action()
}

// SetMass enters a mass in grams. Non-QSP masses under the auto-dilution
// threshold are moved to a weaker dilution unless Raw is set.
type SetMass struct {
	Trial        int
	IngredientID string
	Mass         float64
	Raw          bool
}

// SetDilution overwrites a cell's dilution.
type SetDilution struct {
	Trial        int
	IngredientID string
	Dilution     Dilution
}

// SetTargetMass changes a trial's batch size. With Rescale, every non-QSP
// mass is scaled by the same ratio.
type SetTargetMass struct {
	Trial   int
	Mass    float64
	Rescale bool
}

// DesignateQSP makes an ingredient the filler. An empty id clears the
// designation.
type DesignateQSP struct {
	IngredientID string
}

// SelectTrial moves the selection, freezing the QSP mass of the trial being
// left.
type SelectTrial struct {
	Trial int
}

// CopyTrial duplicates the content of one trial into another slot.
type CopyTrial struct {
	From int
	To   int
}

// AddTrial appends an empty trial.
type AddTrial struct{}

// AddIngredient appends an ingredient row. An empty ID is generated.
type AddIngredient struct {
	Ingredient Ingredient
}

// UpdateIngredient replaces the ingredient with the same ID. Order is kept.
type UpdateIngredient struct {
	Ingredient Ingredient
}

// DeleteIngredient removes an ingredient and every cell that refers to it.
type DeleteIngredient struct {
	IngredientID string
}

// ToggleWeighed flips the checklist state of one ingredient.
type ToggleWeighed struct {
	Trial        int
	IngredientID string
}

// ResetWeighed clears the checklist of a trial.
type ResetWeighed struct {
	Trial int
}

// SetTrialName renames a trial.
type SetTrialName struct {
	Trial int
	Name  string
}

// SetNotes writes one of the free-text fields of a trial.
type SetNotes struct {
	Trial int
	Field NoteField
	Value string
}

// SetSensoryValue scores a descriptor, by name, for a trial.
type SetSensoryValue struct {
	Trial      int
	Descriptor string
	Value      int
}

// AddDescriptor appends to the sheet-wide descriptor list.
type AddDescriptor struct {
	ID   string
	Name string
}

// RemoveDescriptor drops a descriptor from the list. Trial scores are kept.
type RemoveDescriptor struct {
	ID string
}

// ApplySensoryPreset replaces the descriptor list with a preset and writes its
// values into a trial.
type ApplySensoryPreset struct {
	Trial  int
	Preset string
}

// SetProject replaces the project header.
type SetProject struct {
	Project Project
}

// AddReference records a project reference for suggestions.
type AddReference struct {
	Reference string
}

// AddResponsible records a person for suggestions.
type AddResponsible struct {
	Name string
}

func (SetMass) Kind() string            { return "set_mass" }
func (SetDilution) Kind() string        { return "set_dilution" }
func (SetTargetMass) Kind() string      { return "set_target_mass" }
func (DesignateQSP) Kind() string       { return "designate_qsp" }
func (SelectTrial) Kind() string        { return "select_trial" }
func (CopyTrial) Kind() string          { return "copy_trial" }
func (AddTrial) Kind() string           { return "add_trial" }
func (AddIngredient) Kind() string      { return "add_ingredient" }
func (UpdateIngredient) Kind() string   { return "update_ingredient" }
func (DeleteIngredient) Kind() string   { return "delete_ingredient" }
func (ToggleWeighed) Kind() string      { return "toggle_weighed" }
func (ResetWeighed) Kind() string       { return "reset_weighed" }
func (SetTrialName) Kind() string       { return "set_trial_name" }
func (SetNotes) Kind() string           { return "set_notes" }
func (SetSensoryValue) Kind() string    { return "set_sensory_value" }
func (AddDescriptor) Kind() string      { return "add_descriptor" }
func (RemoveDescriptor) Kind() string   { return "remove_descriptor" }
func (ApplySensoryPreset) Kind() string { return "apply_sensory_preset" }
func (SetProject) Kind() string         { return "set_project" }
func (AddReference) Kind() string       { return "add_reference" }
func (AddResponsible) Kind() string     { return "add_responsible" }

func (SetMass) action()            {}
func (SetDilution) action()        {}
func (SetTargetMass) action()      {}
func (DesignateQSP) action()       {}
func (SelectTrial) action()        {}
func (CopyTrial) action()          {}
func (AddTrial) action()           {}
func (AddIngredient) action()      {}
func (UpdateIngredient) action()   {}
func (DeleteIngredient) action()   {}
func (ToggleWeighed) action()      {}
func (ResetWeighed) action()       {}
func (SetTrialName) action()       {}
func (SetNotes) action()           {}
func (SetSensoryValue) action()    {}
func (AddDescriptor) action()      {}
func (RemoveDescriptor) action()   {}
func (ApplySensoryPreset) action() {}
func (SetProject) action()         {}
func (AddReference) action()       {}
func (AddResponsible) action()     {}
