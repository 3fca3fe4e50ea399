package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aromasheet/internal/formulation"
)

var (
	// ErrNotFound reports an unknown sheet id.
	ErrNotFound = errors.New("sheet not found")
	// ErrLocked reports that another editor holds the data directory.
	ErrLocked = errors.New("data directory is locked by another editor")
)

// Meta is the index entry of a sheet.
type Meta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Reference   string    `json:"reference"`
	Responsible string    `json:"responsible"`
	Client      string    `json:"client"`
	Application string    `json:"application"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store is the persistence boundary of the application.
type Store interface {
	// LoadSheet returns nil, nil when no document was saved for id.
	LoadSheet(ctx context.Context, id string) (*formulation.Sheet, error)
	SaveSheet(ctx context.Context, id string, sheet formulation.Sheet) error
	LoadIndex(ctx context.Context) ([]Meta, error)
	// SaveIndex replaces the whole index, keeping the given order.
	SaveIndex(ctx context.Context, index []Meta) error
	// DeleteSheet removes both the document and the index entry.
	DeleteSheet(ctx context.Context, id string) error
	// DuplicateSheet copies a sheet under a new id and reference and returns
	// the new id.
	DuplicateSheet(ctx context.Context, id string) (string, error)
	// NextReference returns "Fnnn" numbered one past the count of indexed
	// sheets, skipping numbers already taken.
	NextReference(ctx context.Context) (string, error)
	Close() error
}

// newID and now are replaced in tests.
var (
	newID = uuid.NewString
	now   = func() time.Time { return time.Now().UTC() }
)

// CopySuffix is appended to the name of a duplicated sheet.
const CopySuffix = " (copy)"

// GenerateReference returns the first reference "Fnnn" not in existing,
// starting the count after the number of existing references.
func GenerateReference(existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, ref := range existing {
		if ref = strings.TrimSpace(ref); ref != "" {
			taken[ref] = struct{}{}
		}
	}
	for n := len(taken) + 1; ; n++ {
		ref := fmt.Sprintf("F%03d", n)
		if _, ok := taken[ref]; !ok {
			return ref
		}
	}
}

// FindMeta returns the position of id in index.
func FindMeta(index []Meta, id string) (int, bool) {
	for i := range index {
		if index[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// primitives is what DuplicateSheet and NextReference need from a store.
type primitives interface {
	LoadSheet(ctx context.Context, id string) (*formulation.Sheet, error)
	SaveSheet(ctx context.Context, id string, sheet formulation.Sheet) error
	LoadIndex(ctx context.Context) ([]Meta, error)
	SaveIndex(ctx context.Context, index []Meta) error
}

func nextReference(ctx context.Context, s primitives) (string, error) {
	index, err := s.LoadIndex(ctx)
	if err != nil {
		return "", err
	}
	refs := make([]string, 0, len(index))
	for _, m := range index {
		refs = append(refs, m.Reference)
	}
	return GenerateReference(refs), nil
}

func duplicateSheet(ctx context.Context, s primitives, id string) (string, error) {
	index, err := s.LoadIndex(ctx)
	if err != nil {
		return "", err
	}
	pos, ok := FindMeta(index, id)
	if !ok {
		return "", fmt.Errorf("duplicate %s: %w", id, ErrNotFound)
	}
	sheet, err := s.LoadSheet(ctx, id)
	if err != nil {
		return "", err
	}

	refs := make([]string, 0, len(index))
	for _, m := range index {
		refs = append(refs, m.Reference)
	}
	ts := now()
	meta := index[pos]
	meta.ID = newID()
	meta.Name = strings.TrimSpace(meta.Name + CopySuffix)
	meta.Reference = GenerateReference(refs)
	meta.CreatedAt = ts
	meta.UpdatedAt = ts

	if sheet != nil {
		clone := sheet.Clone()
		clone.Project.Reference = meta.Reference
		if err := s.SaveSheet(ctx, meta.ID, clone); err != nil {
			return "", err
		}
	}
	if err := s.SaveIndex(ctx, append(index, meta)); err != nil {
		return "", err
	}
	return meta.ID, nil
}
