package workbench

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"aromasheet/internal/formulation"
	"aromasheet/internal/logging"
	"aromasheet/internal/sheetstore"
)

// Session is one open sheet. It is not safe for concurrent use.
type Session struct {
	wb      *Workbench
	meta    sheetstore.Meta
	sheet   formulation.Sheet
	logger  *slog.Logger
	notices []Notice
	// Autosave saves after every Dispatch. It defaults to true.
	Autosave bool
}

func (w *Workbench) newSession(ctx context.Context, meta sheetstore.Meta, sheet formulation.Sheet) *Session {
	ctx = logging.WithSheetID(ctx, meta.ID)
	return &Session{
		wb:       w,
		meta:     meta,
		sheet:    sheet,
		logger:   logging.WithContext(ctx, w.logger),
		Autosave: true,
	}
}

// ID returns the sheet id.
func (s *Session) ID() string { return s.meta.ID }

// Meta returns the index entry as of the last save.
func (s *Session) Meta() sheetstore.Meta { return s.meta }

// Sheet returns the current state. Callers must not mutate it.
func (s *Session) Sheet() formulation.Sheet { return s.sheet }

// Notices returns and clears the notices raised since the last call.
func (s *Session) Notices() []Notice {
	out := s.notices
	s.notices = nil
	return out
}

// Dispatch applies actions in order and autosaves. Invalid actions are
// no-ops of the reducer; some of them raise a warning notice.
func (s *Session) Dispatch(ctx context.Context, actions ...formulation.Action) error {
	ctx = logging.WithSheetID(ctx, s.meta.ID)
	for _, a := range actions {
		a = s.prepare(a)
		before := s.sheet
		s.sheet = formulation.Reduce(before, a)
		s.logger.Debug("action applied", logging.String(logging.FieldAction, a.Kind()))
		s.advise(ctx, before, a)
	}
	if !s.Autosave {
		return nil
	}
	return s.Save(ctx)
}

// prepare applies configured entry behavior to an action.
func (s *Session) prepare(a formulation.Action) formulation.Action {
	if m, ok := a.(formulation.SetMass); ok && !s.wb.cfg.Formulation.AutoDilution {
		m.Raw = true
		return m
	}
	return a
}

// advise raises the notices of one transition.
func (s *Session) advise(ctx context.Context, before formulation.Sheet, a formulation.Action) {
	after := s.sheet
	switch a := a.(type) {
	case formulation.AddTrial:
		if after.ActiveTrialCount == before.ActiveTrialCount {
			s.notify(ctx, NoticeWarning, fmt.Sprintf("a sheet holds at most %d trials", formulation.MaxTrials))
		}
	case formulation.CopyTrial:
		if t, ok := after.Trial(a.To); ok && a.From != a.To && a.To <= after.ActiveTrialCount {
			if from, ok := before.Trial(a.From); ok {
				s.notify(ctx, NoticeSuccess, fmt.Sprintf("%s copied to %s", from.Name, t.Name))
				return
			}
		}
		s.notify(ctx, NoticeWarning, fmt.Sprintf("cannot copy trial %d to trial %d", a.From, a.To))
	case formulation.AddDescriptor:
		if len(after.SensoryDescriptors) == len(before.SensoryDescriptors) {
			if strings.TrimSpace(a.Name) != "" {
				s.notify(ctx, NoticeWarning, "this descriptor already exists")
			}
			return
		}
		s.notify(ctx, NoticeSuccess, fmt.Sprintf("descriptor %q added", strings.TrimSpace(a.Name)))
	case formulation.ApplySensoryPreset:
		preset, ok := formulation.LookupPreset(a.Preset)
		if !ok {
			s.notify(ctx, NoticeWarning, fmt.Sprintf("unknown sensory profile %q", a.Preset))
			return
		}
		if _, ok := after.Trial(a.Trial); ok {
			s.notify(ctx, NoticeSuccess, fmt.Sprintf("profile %q applied", preset.Label))
		}
	case formulation.SetMass:
		s.checkHeadroom(ctx, a.Trial)
	case formulation.SetTargetMass:
		s.checkHeadroom(ctx, a.Trial)
	case formulation.DesignateQSP:
		if a.IngredientID != "" && after.QSPIngredientID != a.IngredientID {
			s.notify(ctx, NoticeWarning, fmt.Sprintf("unknown ingredient %q", a.IngredientID))
		}
	}
}

// checkHeadroom warns when the fixed masses of trial n leave nothing for the
// QSP ingredient.
func (s *Session) checkHeadroom(ctx context.Context, n int) {
	if s.sheet.QSPIngredientID == "" {
		return
	}
	t, ok := s.sheet.Trial(n)
	if !ok {
		return
	}
	if s.sheet.QSPMass(n) == 0 && t.TargetMass > 0 {
		s.notify(ctx, NoticeWarning, fmt.Sprintf("%s: fixed masses reach the %.2f g target, no room left for the QSP ingredient", t.Name, t.TargetMass))
	}
}

func (s *Session) notify(ctx context.Context, level NoticeLevel, msg string) {
	n := Notice{Level: level, Message: msg}
	s.notices = append(s.notices, n)
	s.wb.notifier.Notify(ctx, n)
}

// Save writes the sheet and refreshes its index entry from the project
// fields.
func (s *Session) Save(ctx context.Context) error {
	store := s.wb.store
	if err := store.SaveSheet(ctx, s.meta.ID, s.sheet); err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	index, err := store.LoadIndex(ctx)
	if err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	meta := s.meta
	if pos, ok := sheetstore.FindMeta(index, meta.ID); ok {
		meta = index[pos]
	} else {
		index = append(index, meta)
	}
	p := s.sheet.Project
	if ref := strings.TrimSpace(p.Reference); ref != "" {
		meta.Reference = ref
	}
	meta.Responsible = p.Responsible
	meta.Client = p.Client
	meta.Application = p.Application
	meta.UpdatedAt = now()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = meta.UpdatedAt
	}
	pos, _ := sheetstore.FindMeta(index, meta.ID)
	index[pos] = meta
	if err := store.SaveIndex(ctx, index); err != nil {
		return fmt.Errorf("save sheet: %w", err)
	}
	s.meta = meta
	s.logger.Debug("sheet saved")
	return nil
}

// Reset replaces the sheet with a fresh one that keeps the project
// reference.
func (s *Session) Reset(ctx context.Context) error {
	s.sheet = s.wb.freshSheet(ctx, formulation.Project{Reference: s.sheet.Project.Reference})
	s.notify(ctx, NoticeInfo, "sheet reset")
	return s.Save(ctx)
}

// Analyze derives the figures of trial n with the configured pricing. Zero
// selects the current trial.
func (s *Session) Analyze(n int) (formulation.Analysis, bool) {
	if n == 0 {
		n = s.sheet.SelectedTrial
	}
	return formulation.Analyze(s.sheet, n, s.wb.Pricing())
}
