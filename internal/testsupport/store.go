package testsupport

import (
	"context"
	"testing"

	"aromasheet/internal/config"
	"aromasheet/internal/sheetstore"
)

// MustOpenStore opens the configured sheet store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) sheetstore.Store {
	t.Helper()

	store, err := sheetstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sheetstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
