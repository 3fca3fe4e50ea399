package sheetstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"aromasheet/internal/config"
	"aromasheet/internal/formulation"
	"aromasheet/internal/sheetstore"
)

type storeFactory func(t *testing.T) sheetstore.Store

func openSQLite(t *testing.T) sheetstore.Store {
	t.Helper()
	store, err := sheetstore.OpenSQL(context.Background(), sheetstore.DriverSQLite, filepath.Join(t.TempDir(), "sheets.db"))
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openMemory(t *testing.T) sheetstore.Store {
	t.Helper()
	return sheetstore.NewMemStore()
}

func forEachStore(t *testing.T, fn func(t *testing.T, store sheetstore.Store)) {
	t.Helper()
	for name, open := range map[string]storeFactory{"sqlite": openSQLite, "memory": openMemory} {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func sampleSheet() formulation.Sheet {
	s := formulation.NewSheet(formulation.NewSheetOptions{
		Project: formulation.Project{Reference: "F001", Client: "Acme"},
	})
	s = formulation.Reduce(s, formulation.SetMass{Trial: 1, IngredientID: "ing-3", Mass: 0.002})
	s = formulation.Reduce(s, formulation.SetNotes{Trial: 2, Field: formulation.NoteSensory, Value: "round"})
	return s
}

func sampleMeta(id, ref string) sheetstore.Meta {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return sheetstore.Meta{ID: id, Name: "Sheet " + ref, Reference: ref, Client: "Acme", CreatedAt: ts, UpdatedAt: ts}
}

func TestSaveAndLoadSheet(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		ctx := context.Background()
		want := sampleSheet()
		if err := store.SaveSheet(ctx, "a", want); err != nil {
			t.Fatalf("SaveSheet: %v", err)
		}
		got, err := store.LoadSheet(ctx, "a")
		if err != nil {
			t.Fatalf("LoadSheet: %v", err)
		}
		if got == nil {
			t.Fatal("expected a sheet")
		}
		if diff := cmp.Diff(want.Normalize(), *got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("sheet mismatch (-want +got):\n%s", diff)
		}

		// Overwrite keeps a single document.
		want = formulation.Reduce(want, formulation.AddTrial{})
		if err := store.SaveSheet(ctx, "a", want); err != nil {
			t.Fatalf("SaveSheet overwrite: %v", err)
		}
		got, err = store.LoadSheet(ctx, "a")
		if err != nil {
			t.Fatalf("LoadSheet: %v", err)
		}
		if got.ActiveTrialCount != want.ActiveTrialCount {
			t.Fatalf("expected %d trials after overwrite, got %d", want.ActiveTrialCount, got.ActiveTrialCount)
		}
	})
}

func TestLoadMissingSheetReturnsNil(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		got, err := store.LoadSheet(context.Background(), "missing")
		if err != nil {
			t.Fatalf("LoadSheet: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil sheet, got %+v", got)
		}
	})
}

func TestIndexRoundTripKeepsOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		ctx := context.Background()
		empty, err := store.LoadIndex(ctx)
		if err != nil {
			t.Fatalf("LoadIndex: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected empty index, got %v", empty)
		}

		index := []sheetstore.Meta{sampleMeta("b", "F002"), sampleMeta("a", "F001")}
		if err := store.SaveIndex(ctx, index); err != nil {
			t.Fatalf("SaveIndex: %v", err)
		}
		got, err := store.LoadIndex(ctx)
		if err != nil {
			t.Fatalf("LoadIndex: %v", err)
		}
		if diff := cmp.Diff(index, got); diff != "" {
			t.Fatalf("index mismatch (-want +got):\n%s", diff)
		}

		if err := store.SaveIndex(ctx, index[1:]); err != nil {
			t.Fatalf("SaveIndex: %v", err)
		}
		got, _ = store.LoadIndex(ctx)
		if len(got) != 1 || got[0].ID != "a" {
			t.Fatalf("expected index to be replaced, got %v", got)
		}
	})
}

func TestDeleteSheet(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		ctx := context.Background()
		if err := store.SaveSheet(ctx, "a", sampleSheet()); err != nil {
			t.Fatalf("SaveSheet: %v", err)
		}
		if err := store.SaveIndex(ctx, []sheetstore.Meta{sampleMeta("a", "F001"), sampleMeta("b", "F002")}); err != nil {
			t.Fatalf("SaveIndex: %v", err)
		}
		if err := store.DeleteSheet(ctx, "a"); err != nil {
			t.Fatalf("DeleteSheet: %v", err)
		}
		if got, _ := store.LoadSheet(ctx, "a"); got != nil {
			t.Fatal("expected document to be removed")
		}
		index, _ := store.LoadIndex(ctx)
		if len(index) != 1 || index[0].ID != "b" {
			t.Fatalf("expected only b to remain, got %v", index)
		}
		if err := store.DeleteSheet(ctx, "a"); !errors.Is(err, sheetstore.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDuplicateSheet(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		ctx := context.Background()
		if err := store.SaveSheet(ctx, "a", sampleSheet()); err != nil {
			t.Fatalf("SaveSheet: %v", err)
		}
		if err := store.SaveIndex(ctx, []sheetstore.Meta{sampleMeta("a", "F001")}); err != nil {
			t.Fatalf("SaveIndex: %v", err)
		}

		id, err := store.DuplicateSheet(ctx, "a")
		if err != nil {
			t.Fatalf("DuplicateSheet: %v", err)
		}
		if id == "" || id == "a" {
			t.Fatalf("expected a fresh id, got %q", id)
		}
		index, _ := store.LoadIndex(ctx)
		if len(index) != 2 {
			t.Fatalf("expected 2 index entries, got %d", len(index))
		}
		copyMeta := index[1]
		if copyMeta.ID != id || copyMeta.Name != "Sheet F001"+sheetstore.CopySuffix || copyMeta.Reference != "F002" {
			t.Fatalf("unexpected duplicate meta: %+v", copyMeta)
		}
		dup, err := store.LoadSheet(ctx, id)
		if err != nil || dup == nil {
			t.Fatalf("load duplicate: %v", err)
		}
		if dup.Project.Reference != "F002" {
			t.Fatalf("expected duplicate to carry the new reference, got %q", dup.Project.Reference)
		}
		original, _ := store.LoadSheet(ctx, "a")
		if original.Project.Reference != "F001" {
			t.Fatalf("original reference changed: %q", original.Project.Reference)
		}

		if _, err := store.DuplicateSheet(ctx, "missing"); !errors.Is(err, sheetstore.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestNextReference(t *testing.T) {
	forEachStore(t, func(t *testing.T, store sheetstore.Store) {
		ctx := context.Background()
		ref, err := store.NextReference(ctx)
		if err != nil {
			t.Fatalf("NextReference: %v", err)
		}
		if ref != "F001" {
			t.Fatalf("expected F001 for an empty store, got %q", ref)
		}
		if err := store.SaveIndex(ctx, []sheetstore.Meta{sampleMeta("a", "F001"), sampleMeta("b", "F002")}); err != nil {
			t.Fatalf("SaveIndex: %v", err)
		}
		if ref, _ = store.NextReference(ctx); ref != "F003" {
			t.Fatalf("expected F003, got %q", ref)
		}
	})
}

func TestGenerateReference(t *testing.T) {
	cases := []struct {
		existing []string
		want     string
	}{
		{nil, "F001"},
		{[]string{"F001"}, "F002"},
		{[]string{"F002"}, "F003"},
		{[]string{"F001", "F003"}, "F004"},
		{[]string{"X", "F003"}, "F004"},
		{[]string{"", "  "}, "F001"},
		{[]string{"F001", "F001"}, "F002"},
	}
	for _, tc := range cases {
		if got := sheetstore.GenerateReference(tc.existing); got != tc.want {
			t.Errorf("GenerateReference(%v) = %q, want %q", tc.existing, got, tc.want)
		}
	}
}

func TestReopenSQLiteKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sheets.db")
	store, err := sheetstore.OpenSQL(ctx, sheetstore.DriverSQLite, path)
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	if err := store.SaveIndex(ctx, []sheetstore.Meta{sampleMeta("a", "F001")}); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := sheetstore.OpenSQL(ctx, "sqlite3", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Driver() != sheetstore.DriverSQLite {
		t.Fatalf("unexpected driver %q", reopened.Driver())
	}
	index, err := reopened.LoadIndex(ctx)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(index) != 1 || index[0].Reference != "F001" {
		t.Fatalf("unexpected index after reopen: %v", index)
	}
}

func TestOpenSQLRejectsBadInput(t *testing.T) {
	if _, err := sheetstore.OpenSQL(context.Background(), "mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := sheetstore.OpenSQL(context.Background(), sheetstore.DriverPostgres, ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpenPostgresUsesPgxDriver(t *testing.T) {
	var gotDriver, gotDSN string
	boom := errors.New("boom")
	restore := sheetstore.OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return nil, boom
	})
	defer restore()

	_, err := sheetstore.OpenSQL(context.Background(), "postgresql", "postgres://localhost/aromasheet")
	if !errors.Is(err, boom) {
		t.Fatalf("expected open error to surface, got %v", err)
	}
	if gotDriver != "pgx" || gotDSN != "postgres://localhost/aromasheet" {
		t.Fatalf("unexpected open call: driver=%q dsn=%q", gotDriver, gotDSN)
	}
}

func TestOpenFromConfigCreatesDataDir(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.DSN = filepath.Join(cfg.Paths.DataDir, "aromasheet.db")

	store, err := sheetstore.Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if _, err := store.LoadIndex(context.Background()); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	if _, err := sheetstore.Open(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestEditorLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aromasheet.lock")
	first, err := sheetstore.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := sheetstore.AcquireLock(path); !errors.Is(err, sheetstore.ErrLocked) {
		t.Fatalf("expected ErrLocked for second holder, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := sheetstore.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	_ = second.Release()

	var nilLock *sheetstore.EditorLock
	if err := nilLock.Release(); err != nil {
		t.Fatalf("nil Release: %v", err)
	}
}
