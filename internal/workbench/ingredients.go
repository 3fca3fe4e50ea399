package workbench

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aromasheet/internal/catalog"
	"aromasheet/internal/formulation"
	"aromasheet/internal/textutil"
)

// ErrUnknownIngredient reports an ingredient reference that matches nothing.
var ErrUnknownIngredient = errors.New("unknown ingredient")

// ResolveIngredient finds an ingredient of the sheet by id, reference, name
// (ignoring case and accents), or unique id prefix, in that order.
func (s *Session) ResolveIngredient(ref string) (formulation.Ingredient, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return formulation.Ingredient{}, fmt.Errorf("empty ingredient reference: %w", ErrUnknownIngredient)
	}
	ingredients := s.sheet.Ingredients
	if ing, ok := s.sheet.Ingredient(ref); ok {
		return ing, nil
	}

	folded := textutil.Fold(ref)
	matchers := []func(formulation.Ingredient) bool{
		func(ing formulation.Ingredient) bool {
			return ing.Reference != "" && strings.EqualFold(ing.Reference, ref)
		},
		func(ing formulation.Ingredient) bool { return textutil.Fold(ing.Name) == folded },
		func(ing formulation.Ingredient) bool { return strings.HasPrefix(ing.ID, ref) },
	}
	for _, match := range matchers {
		var found []formulation.Ingredient
		for _, ing := range ingredients {
			if match(ing) {
				found = append(found, ing)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return formulation.Ingredient{}, fmt.Errorf("ingredient %q matches %d rows: %w", ref, len(found), ErrAmbiguous)
		}
	}
	return formulation.Ingredient{}, fmt.Errorf("ingredient %q: %w", ref, ErrUnknownIngredient)
}

// CatalogMatch picks the catalog entry for query: an exact reference match
// wins, otherwise the search must return exactly one entry.
func (w *Workbench) CatalogMatch(query string, typ formulation.IngredientType) (catalog.Entry, error) {
	if w.catalog == nil {
		return catalog.Entry{}, errors.New("no ingredient catalog loaded")
	}
	if e, ok := w.catalog.Lookup(query); ok {
		return e, nil
	}
	found := w.catalog.Search(query, catalog.Options{Limit: 2, Type: typ})
	switch len(found) {
	case 0:
		return catalog.Entry{}, fmt.Errorf("catalog has no match for %q: %w", query, ErrUnknownIngredient)
	case 1:
		return found[0], nil
	}
	return catalog.Entry{}, fmt.Errorf("catalog query %q matches several entries: %w", query, ErrAmbiguous)
}

// AddFromCatalog copies the catalog entry matching query into the sheet and
// returns the new ingredient.
func (s *Session) AddFromCatalog(ctx context.Context, query string, typ formulation.IngredientType) (formulation.Ingredient, error) {
	entry, err := s.wb.CatalogMatch(query, typ)
	if err != nil {
		return formulation.Ingredient{}, err
	}
	ing := entry.Ingredient()
	ing.ID = newID()
	if err := s.Dispatch(ctx, formulation.AddIngredient{Ingredient: ing}); err != nil {
		return formulation.Ingredient{}, err
	}
	added, ok := s.sheet.Ingredient(ing.ID)
	if !ok {
		return formulation.Ingredient{}, fmt.Errorf("add %s: %w", entry.Reference, ErrUnknownIngredient)
	}
	s.notify(ctx, NoticeSuccess, fmt.Sprintf("%s added from the catalog", added.Name))
	return added, nil
}

// RefreshFromCatalog overwrites every catalog-derived field of an ingredient
// with the entry matching query, keeping its id.
func (s *Session) RefreshFromCatalog(ctx context.Context, ingredientID, query string) (formulation.Ingredient, error) {
	if _, ok := s.sheet.Ingredient(ingredientID); !ok {
		return formulation.Ingredient{}, fmt.Errorf("ingredient %q: %w", ingredientID, ErrUnknownIngredient)
	}
	entry, err := s.wb.CatalogMatch(query, "")
	if err != nil {
		return formulation.Ingredient{}, err
	}
	ing := entry.Ingredient()
	ing.ID = ingredientID
	if err := s.Dispatch(ctx, formulation.UpdateIngredient{Ingredient: ing}); err != nil {
		return formulation.Ingredient{}, err
	}
	updated, _ := s.sheet.Ingredient(ingredientID)
	return updated, nil
}
