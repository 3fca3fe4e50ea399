package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"aromasheet/internal/catalog"
	"aromasheet/internal/formulation"
)

func mustBuiltin(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	return c
}

func references(entries []catalog.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Reference)
	}
	return out
}

func TestBuiltinCatalogParses(t *testing.T) {
	c := mustBuiltin(t)
	if c.Len() != 37 {
		t.Fatalf("expected 37 builtin entries, got %d", c.Len())
	}
	e, ok := c.Lookup("ext001")
	if !ok {
		t.Fatal("expected EXT001 in builtin catalog")
	}
	want := catalog.Entry{
		Reference:      "EXT001",
		Name:           "Vanilla extract",
		Type:           formulation.TypeAromatic,
		Classification: formulation.Natural,
		IsExtract:      true,
		ExtractSource:  "vanilla",
		Price:          200,
		Density:        0.92,
		VanillinRate:   0.8,
		CAS:            "8024-06-4",
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Fatalf("unexpected entry (-want +got):\n%s", diff)
	}
}

func TestSearch(t *testing.T) {
	c := mustBuiltin(t)
	tests := []struct {
		name  string
		query string
		opts  catalog.Options
		want  []string
	}{
		{"token across fields", "vanill natural", catalog.Options{}, []string{"SAR001", "SAR004"}},
		{"by reference", "sas00", catalog.Options{Limit: 2}, []string{"SAS001", "SAS002"}},
		{"by source", "orange", catalog.Options{}, []string{"EXT006"}},
		{"by cas", "121-33-5", catalog.Options{}, []string{"SAR001", "SAS001"}},
		{"type filter", "oil", catalog.Options{Type: formulation.TypeSupport}, []string{"SUP006", "SUP008"}},
		{"no match", "truffle", catalog.Options{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := references(c.Search(tt.query, tt.opts))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearchEmptyQueryListsCatalog(t *testing.T) {
	c := mustBuiltin(t)
	if got := c.Search("", catalog.Options{}); len(got) != c.Len() {
		t.Fatalf("expected all %d entries, got %d", c.Len(), len(got))
	}
	got := c.Search("  ", catalog.Options{Limit: 3, Type: formulation.TypeAromatic})
	if diff := cmp.Diff([]string{"EXT001", "EXT002", "EXT003"}, references(got)); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
}

func TestSearchIgnoresAccents(t *testing.T) {
	c := catalog.New([]catalog.Entry{
		{Reference: "X1", Name: "Éthyl vanilline", Type: formulation.TypeAromatic, Classification: formulation.Synthetic},
	})
	if got := c.Search("ethyl", catalog.Options{}); len(got) != 1 {
		t.Fatalf("expected accent-insensitive match, got %#v", got)
	}
	if got := c.Search("ÉTHYL", catalog.Options{}); len(got) != 1 {
		t.Fatalf("expected case-insensitive match, got %#v", got)
	}
}

func TestEntryIngredientCopiesFields(t *testing.T) {
	c := mustBuiltin(t)
	e, _ := c.Lookup("SAS001")
	ing := e.Ingredient()
	if ing.ID != "" || ing.Name != "Synthetic vanillin" || ing.Classification != formulation.Synthetic || ing.VanillinRate != 100 || ing.Reference != "SAS001" {
		t.Fatalf("unexpected ingredient %#v", ing)
	}
}

func TestLoadMergesUserCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.csv")
	content := strings.Join([]string{
		"name,reference,type,classification,price,is_extract,extract_source",
		"Vanilla extract (house),EXT001,aromatic,natural,\"180,5\",yes,vanilla",
		"Tonka absolute,USR001,aroma,nat,900,true,tonka",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 38 {
		t.Fatalf("expected 38 entries, got %d", c.Len())
	}
	e, _ := c.Lookup("EXT001")
	if e.Name != "Vanilla extract (house)" || e.Price != 180.5 || e.Density != 0 {
		t.Fatalf("expected user entry to replace builtin, got %#v", e)
	}
	tonka, ok := c.Lookup("USR001")
	if !ok || tonka.Type != formulation.TypeAromatic || tonka.Classification != formulation.Natural || !tonka.IsExtract {
		t.Fatalf("unexpected appended entry %#v", tonka)
	}
}

func TestLoadUserYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.yaml")
	content := `- reference: USR010
  name: Fenugreek extract
  type: aromatic
  classification: natural
  is_extract: true
  extract_source: fenugreek
  price: 95
  density: 1.01
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := c.Search("fenugreek", catalog.Options{})
	if len(got) != 1 || got[0].Density != 1.01 || got[0].ExtractSource != "fenugreek" {
		t.Fatalf("unexpected search result %#v", got)
	}
}

func TestLoadMissingFileFallsBackToBuiltin(t *testing.T) {
	c, err := catalog.Load(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 37 {
		t.Fatalf("expected builtin catalog, got %d entries", c.Len())
	}
}

func TestReadFileRejectsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.csv":   "name,type,classification\nThing,solvent,natural\n",
		"neg.csv":   "name,type,classification,price\nThing,support,natural,-1\n",
		"cols.csv":  "name,type\nThing,support\n",
		"bad.yaml":  "- name: Thing\n  type: aromatic\n  classification: organic\n",
		"notes.txt": "whatever",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := catalog.ReadFile(path); err == nil {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	c := mustBuiltin(t)
	var b strings.Builder
	if err := catalog.WriteCSV(&b, c.Entries()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	entries, err := catalog.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff(c.Entries(), entries); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
