package workbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"aromasheet/internal/catalog"
	"aromasheet/internal/config"
	"aromasheet/internal/formulation"
	"aromasheet/internal/logging"
	"aromasheet/internal/sheetstore"
	"aromasheet/internal/textutil"
)

// ErrAmbiguous reports a sheet or ingredient reference matching several items.
var ErrAmbiguous = errors.New("ambiguous reference")

var (
	newID = uuid.NewString
	now   = func() time.Time { return time.Now().UTC() }
)

// Workbench manages the sheets of one store.
type Workbench struct {
	cfg      *config.Config
	store    sheetstore.Store
	catalog  *catalog.Catalog
	logger   *slog.Logger
	notifier Notifier
}

// Option configures optional Workbench behavior.
type Option func(*Workbench)

// WithNotifier routes notices to n instead of the log.
func WithNotifier(n Notifier) Option {
	return func(w *Workbench) {
		if n != nil {
			w.notifier = n
		}
	}
}

// WithCatalog sets the ingredient catalog used by AddFromCatalog and the
// default QSP lookup.
func WithCatalog(c *catalog.Catalog) Option {
	return func(w *Workbench) { w.catalog = c }
}

// New constructs a workbench. A nil cfg uses config.Default and a nil logger
// discards output.
func New(cfg *config.Config, store sheetstore.Store, logger *slog.Logger, opts ...Option) *Workbench {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	w := &Workbench{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workbench"),
	}
	w.notifier = LogNotifier(logger)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Store exposes the underlying store.
func (w *Workbench) Store() sheetstore.Store { return w.store }

// List returns the index entries matching query, most recently updated
// first. Every token of query must occur in the name, reference,
// responsible, client or application, ignoring case and accents.
func (w *Workbench) List(ctx context.Context, query string) ([]sheetstore.Meta, error) {
	index, err := w.store.LoadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	tokens := textutil.Tokens(query)
	out := make([]sheetstore.Meta, 0, len(index))
	for _, m := range index {
		if textutil.MatchAll(tokens, m.Name, m.Reference, m.Responsible, m.Client, m.Application) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// CreateOptions describes a new sheet.
type CreateOptions struct {
	Name    string
	Project formulation.Project
}

// Create adds a sheet with the configured defaults and a fresh Fnnn
// reference unless the project already names one. The sheet is saved before
// the session is returned.
func (w *Workbench) Create(ctx context.Context, opts CreateOptions) (*Session, error) {
	index, err := w.store.LoadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	project := opts.Project
	if strings.TrimSpace(project.Reference) == "" {
		refs := make([]string, 0, len(index))
		for _, m := range index {
			refs = append(refs, m.Reference)
		}
		project.Reference = sheetstore.GenerateReference(refs)
	}

	ts := now()
	meta := sheetstore.Meta{
		ID:        newID(),
		Name:      strings.TrimSpace(opts.Name),
		Reference: project.Reference,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := w.store.SaveIndex(ctx, append(index, meta)); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	s := w.newSession(ctx, meta, w.freshSheet(ctx, project))
	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	w.logger.Info("sheet created",
		logging.String(logging.FieldSheetID, meta.ID),
		logging.String("reference", meta.Reference),
	)
	return s, nil
}

// Open loads a sheet by id, unique id prefix, or reference. An index entry
// without a saved document opens as a fresh sheet carrying the entry's
// reference.
func (w *Workbench) Open(ctx context.Context, ref string) (*Session, error) {
	meta, err := w.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	sheet, err := w.store.LoadSheet(ctx, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	if sheet == nil {
		fresh := w.freshSheet(ctx, formulation.Project{Reference: meta.Reference})
		sheet = &fresh
	}
	w.logger.Debug("sheet opened", logging.String(logging.FieldSheetID, meta.ID))
	return w.newSession(ctx, meta, *sheet), nil
}

// Resolve finds the index entry named by ref.
func (w *Workbench) Resolve(ctx context.Context, ref string) (sheetstore.Meta, error) {
	index, err := w.store.LoadIndex(ctx)
	if err != nil {
		return sheetstore.Meta{}, fmt.Errorf("resolve sheet: %w", err)
	}
	return resolveMeta(index, ref)
}

func resolveMeta(index []sheetstore.Meta, ref string) (sheetstore.Meta, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return sheetstore.Meta{}, fmt.Errorf("empty sheet reference: %w", sheetstore.ErrNotFound)
	}
	if pos, ok := sheetstore.FindMeta(index, ref); ok {
		return index[pos], nil
	}
	var matches []sheetstore.Meta
	for _, m := range index {
		if strings.EqualFold(m.Reference, ref) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		for _, m := range index {
			if strings.HasPrefix(m.ID, ref) {
				matches = append(matches, m)
			}
		}
	}
	switch len(matches) {
	case 0:
		return sheetstore.Meta{}, fmt.Errorf("sheet %q: %w", ref, sheetstore.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return sheetstore.Meta{}, fmt.Errorf("sheet %q matches %d sheets: %w", ref, len(matches), ErrAmbiguous)
}

// Rename changes the display name of a sheet in the index.
func (w *Workbench) Rename(ctx context.Context, ref, name string) (sheetstore.Meta, error) {
	index, err := w.store.LoadIndex(ctx)
	if err != nil {
		return sheetstore.Meta{}, fmt.Errorf("rename sheet: %w", err)
	}
	meta, err := resolveMeta(index, ref)
	if err != nil {
		return sheetstore.Meta{}, err
	}
	pos, _ := sheetstore.FindMeta(index, meta.ID)
	index[pos].Name = strings.TrimSpace(name)
	index[pos].UpdatedAt = now()
	if err := w.store.SaveIndex(ctx, index); err != nil {
		return sheetstore.Meta{}, fmt.Errorf("rename sheet: %w", err)
	}
	return index[pos], nil
}

// Duplicate copies a sheet and returns the new index entry.
func (w *Workbench) Duplicate(ctx context.Context, ref string) (sheetstore.Meta, error) {
	meta, err := w.Resolve(ctx, ref)
	if err != nil {
		return sheetstore.Meta{}, err
	}
	id, err := w.store.DuplicateSheet(ctx, meta.ID)
	if err != nil {
		return sheetstore.Meta{}, fmt.Errorf("duplicate sheet: %w", err)
	}
	copyMeta, err := w.Resolve(ctx, id)
	if err != nil {
		return sheetstore.Meta{}, err
	}
	w.notifier.Notify(ctx, Notice{Level: NoticeSuccess, Message: fmt.Sprintf("%s duplicated as %s", meta.Reference, copyMeta.Reference)})
	return copyMeta, nil
}

// Delete removes a sheet and its index entry.
func (w *Workbench) Delete(ctx context.Context, ref string) (sheetstore.Meta, error) {
	meta, err := w.Resolve(ctx, ref)
	if err != nil {
		return sheetstore.Meta{}, err
	}
	if err := w.store.DeleteSheet(ctx, meta.ID); err != nil {
		return sheetstore.Meta{}, fmt.Errorf("delete sheet: %w", err)
	}
	w.logger.Info("sheet deleted", logging.String(logging.FieldSheetID, meta.ID))
	return meta, nil
}

// Pricing returns the configured commercial inputs.
func (w *Workbench) Pricing() formulation.PricingOptions {
	return formulation.PricingOptions{
		TargetSalePrice: w.cfg.Pricing.TargetSalePrice,
		Factor:          w.cfg.Pricing.Factor,
	}
}

// freshSheet builds a sheet from the [formulation] defaults. The configured
// default QSP is looked up among the starter ingredients first and then in
// the catalog.
func (w *Workbench) freshSheet(ctx context.Context, project formulation.Project) formulation.Sheet {
	f := w.cfg.Formulation
	opts := formulation.NewSheetOptions{
		Project:    project,
		Trials:     f.InitialTrials,
		TargetMass: f.DefaultTargetMass,
	}
	ref := strings.TrimSpace(f.DefaultQSP)
	if ref == "" {
		return formulation.NewSheet(opts)
	}

	ingredients := formulation.DefaultIngredients()
	for _, ing := range ingredients {
		if strings.EqualFold(ing.Reference, ref) {
			opts.Ingredients = ingredients
			opts.QSPIngredientID = ing.ID
			return formulation.NewSheet(opts)
		}
	}
	if entry, ok := w.catalog.Lookup(ref); ok {
		ing := entry.Ingredient()
		ing.ID = newID()
		opts.Ingredients = append(ingredients, ing)
		opts.QSPIngredientID = ing.ID
		return formulation.NewSheet(opts)
	}
	w.notifier.Notify(ctx, Notice{Level: NoticeWarning, Message: fmt.Sprintf("default QSP %q is not in the catalog", ref)})
	return formulation.NewSheet(opts)
}
