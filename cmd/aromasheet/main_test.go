package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aromasheet/internal/catalog"
	"aromasheet/internal/formulation"
	"aromasheet/internal/sheetstore"
)

type cliTestEnv struct {
	baseDir    string
	dataDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("AROMASHEET_DATA_DIR", "")
	t.Setenv("AROMASHEET_DATABASE_DSN", "")
	t.Setenv("AROMASHEET_STORAGE_DRIVER", "")

	env := &cliTestEnv{
		baseDir:    base,
		dataDir:    filepath.Join(base, "data"),
		configPath: filepath.Join(base, "aromasheet.toml"),
	}
	writeTestConfig(t, env.configPath, env.dataDir, "")
	return env
}

func writeTestConfig(t *testing.T, path, dataDir, extra string) {
	t.Helper()
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"warn\"\n%s",
		dataDir, filepath.Join(dataDir, "logs"), extra)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun fails the test when the command errors and returns its stdout.
func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, args, e.configPath)
	if err != nil {
		t.Fatalf("%s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeJSON(t *testing.T, payload string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		t.Fatalf("decode %q: %v", payload, err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "Storage: sqlite")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestInvalidConfigIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, env.dataDir, "\n[pricing]\nfactor = -1\n")

	if _, _, err := runCLI(t, []string{"sheet", "list"}, env.configPath); err == nil {
		t.Fatal("expected an invalid factor to fail config loading")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, env.configPath); err == nil {
		t.Fatal("expected validate to report the invalid factor")
	}
}

func TestSheetLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "sheet", "list")
	requireContains(t, out, "No sheets yet")

	out = env.mustRun(t, "sheet", "new", "--name", "Vanilla base", "--client", "Acme", "--responsible", "Dana")
	requireContains(t, out, "Created sheet F001")
	env.mustRun(t, "sheet", "new", "--name", "Citrus top", "--reference", "C-10")

	out = env.mustRun(t, "sheet", "list")
	requireContains(t, out, "Vanilla base")
	requireContains(t, out, "C-10")

	var listed []sheetstore.Meta
	decodeJSON(t, env.mustRun(t, "sheet", "list", "--search", "acme", "--json"), &listed)
	if len(listed) != 1 || listed[0].Reference != "F001" || listed[0].Client != "Acme" {
		t.Fatalf("unexpected search result: %+v", listed)
	}

	var sheet formulation.Sheet
	decodeJSON(t, env.mustRun(t, "sheet", "show", "F001", "--json"), &sheet)
	if sheet.Project.Responsible != "Dana" || len(sheet.Responsibles) != 1 || sheet.Responsibles[0] != "Dana" {
		t.Fatalf("expected responsible recorded, got %+v / %v", sheet.Project, sheet.Responsibles)
	}
	if sheet.ActiveTrialCount != 5 || len(sheet.Ingredients) != 7 {
		t.Fatalf("unexpected fresh sheet: %d trials, %d ingredients", sheet.ActiveTrialCount, len(sheet.Ingredients))
	}

	env.mustRun(t, "sheet", "project", "f001", "--application", "Dairy")
	out = env.mustRun(t, "sheet", "show", "F001")
	requireContains(t, out, "Dairy")
	requireContains(t, out, "Vanilla extract")

	out = env.mustRun(t, "sheet", "rename", "F001", "Vanilla v2")
	requireContains(t, out, `Renamed F001 to "Vanilla v2"`)

	out = env.mustRun(t, "sheet", "duplicate", "F001")
	requireContains(t, out, "Created sheet F003")
	out = env.mustRun(t, "sheet", "delete", "F003")
	requireContains(t, out, "Deleted sheet F003")

	if _, _, err := runCLI(t, []string{"sheet", "show", "F003"}, env.configPath); err == nil {
		t.Fatal("expected deleted sheet to be unknown")
	}
}

func TestTrialEditingAndAnalysis(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, env.dataDir, "\n[pricing]\ntarget_sale_price = 50.0\nfactor = 2.5\n")
	env.mustRun(t, "sheet", "new", "--name", "Vanilla")

	out := env.mustRun(t, "trial", "mass", "F001", "1", "ing-3", "10")
	requireContains(t, out, "Vanilla extract: 10.000 g at 100%")

	out = env.mustRun(t, "trial", "mass", "F001", "1", "natural vanillin", "0,02")
	requireContains(t, out, "0.200 g at 10%")

	out = env.mustRun(t, "trial", "mass", "F001", "1", "SAR002", "0.02", "--raw")
	requireContains(t, out, "0.020 g at 100%")

	var a formulation.Analysis
	decodeJSON(t, env.mustRun(t, "analyze", "F001", "--json"), &a)
	if a.Trial != 1 {
		t.Fatalf("expected selected trial 1, got %d", a.Trial)
	}
	if math.Abs(a.QSPMass-89.78) > 1e-9 {
		t.Fatalf("expected QSP mass 89.78, got %v", a.QSPMass)
	}
	if a.Margin.TargetSalePrice != 50 || a.SalePrice <= 0 {
		t.Fatalf("expected pricing from config, got %+v sale %v", a.Margin, a.SalePrice)
	}

	out = env.mustRun(t, "analyze", "F001")
	requireContains(t, out, "Labeling")
	requireContains(t, out, "vanilla")

	out = env.mustRun(t, "trial", "show", "F001", "1")
	requireContains(t, out, "Ethyl alcohol 96% (QSP)")
	requireContains(t, out, "0/4 weighed")

	out = env.mustRun(t, "trial", "weigh", "F001", "1", "ing-3", "SAR001")
	requireContains(t, out, "2/4 weighed")
	env.mustRun(t, "trial", "reset-weighed", "F001", "1")
	out = env.mustRun(t, "trial", "show", "F001", "1")
	requireContains(t, out, "0/4 weighed")

	out = env.mustRun(t, "trial", "target", "F001", "1", "200", "--rescale")
	requireContains(t, out, "Trial 1 target: 200.000 g")
	var rescaled formulation.Analysis
	decodeJSON(t, env.mustRun(t, "analyze", "F001", "--trial", "1", "--json"), &rescaled)
	if math.Abs(rescaled.QSPMass-179.56) > 1e-9 {
		t.Fatalf("expected QSP mass 179.56 after rescale, got %v", rescaled.QSPMass)
	}

	env.mustRun(t, "trial", "copy", "F001", "1", "2")
	env.mustRun(t, "trial", "name", "F001", "2", "Less sugar")
	env.mustRun(t, "trial", "notes", "F001", "2", "technical", "Cloudy at 4C")
	env.mustRun(t, "trial", "select", "F001", "2")
	out = env.mustRun(t, "trial", "show", "F001")
	requireContains(t, out, "Less sugar")
	requireContains(t, out, "Technical notes: Cloudy at 4C")

	env.mustRun(t, "trial", "dilution", "F001", "2", "ing-3", "1%")
	var sheet formulation.Sheet
	decodeJSON(t, env.mustRun(t, "sheet", "show", "F001", "--json"), &sheet)
	trial, ok := sheet.Trial(2)
	if !ok {
		t.Fatal("trial 2 missing")
	}
	if got := trial.Cells.Get("ing-3").Strength(); got != 0.01 {
		t.Fatalf("expected 1%% dilution, got %v", got)
	}
	if sheet.SelectedTrial != 2 {
		t.Fatalf("expected trial 2 selected, got %d", sheet.SelectedTrial)
	}

	out = env.mustRun(t, "trial", "add", "F001")
	requireContains(t, out, "Added trial 6")
}

func TestTrialCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")

	cases := [][]string{
		{"trial", "mass", "F001", "12", "ing-3", "1"},
		{"trial", "mass", "F001", "0", "ing-3", "1"},
		{"trial", "mass", "F001", "1", "unobtainium", "1"},
		{"trial", "mass", "F001", "1", "ing-1", "1"},
		{"trial", "dilution", "F001", "1", "ing-3", "50%"},
		{"trial", "notes", "F001", "1", "smell", "x"},
		{"trial", "show", "NOPE"},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}

	_, errOut, err := runCLI(t, []string{"trial", "mass", "F001", "1", "ing-3", "abc"}, env.configPath)
	if err != nil {
		t.Fatalf("non-numeric mass should be coerced, got %v", err)
	}
	requireContains(t, errOut, "is not a number")
}

func TestQSPCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")
	env.mustRun(t, "trial", "mass", "F001", "1", "ing-3", "10")

	out := env.mustRun(t, "qsp", "F001")
	requireContains(t, out, "QSP ingredient: Ethyl alcohol 96%")
	requireContains(t, out, "90.000 g")

	out = env.mustRun(t, "qsp", "F001", "propylene glycol")
	requireContains(t, out, "QSP ingredient: Propylene glycol")

	var sheet formulation.Sheet
	decodeJSON(t, env.mustRun(t, "sheet", "show", "F001", "--json"), &sheet)
	if sheet.QSPIngredientID != "ing-2" {
		t.Fatalf("expected ing-2 as QSP, got %q", sheet.QSPIngredientID)
	}

	out = env.mustRun(t, "qsp", "F001", "--clear")
	requireContains(t, out, "no longer has a QSP ingredient")
	out = env.mustRun(t, "qsp", "F001")
	requireContains(t, out, "No QSP ingredient")
}

func TestIngredientCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")

	out := env.mustRun(t, "ingredient", "add", "F001", "--from-catalog", "SUP003")
	requireContains(t, out, "Added Vegetable glycerin")

	out = env.mustRun(t, "ingredient", "add", "F001", "--name", "Caramel base", "--type", "aromatic", "--class", "synthetic", "--price", "40")
	requireContains(t, out, "Added Caramel base")

	if _, _, err := runCLI(t, []string{"ingredient", "add", "F001", "--from-catalog", "vanillin"}, env.configPath); err == nil {
		t.Fatal("expected an ambiguous catalog query to fail")
	}
	if _, _, err := runCLI(t, []string{"ingredient", "add", "F001"}, env.configPath); err == nil {
		t.Fatal("expected add without a name to fail")
	}
	if _, _, err := runCLI(t, []string{"ingredient", "add", "F001", "--name", "X", "--type", "solid"}, env.configPath); err == nil {
		t.Fatal("expected an invalid type to fail")
	}

	env.mustRun(t, "ingredient", "update", "F001", "caramel base", "--price", "45", "--extract-of", "caramel")

	var ingredients []formulation.Ingredient
	decodeJSON(t, env.mustRun(t, "ingredient", "list", "F001", "--json"), &ingredients)
	if len(ingredients) != 9 {
		t.Fatalf("expected 9 ingredients, got %d", len(ingredients))
	}
	caramel := ingredients[8]
	if caramel.Name != "Caramel base" || caramel.Price != 45 || caramel.Classification != formulation.Synthetic {
		t.Fatalf("unexpected caramel row: %+v", caramel)
	}
	if !caramel.IsExtract || caramel.ExtractSource != "caramel" {
		t.Fatalf("expected caramel to be an extract, got %+v", caramel)
	}
	if ingredients[7].Reference != "SUP003" || ingredients[7].ID == "" {
		t.Fatalf("unexpected catalog row: %+v", ingredients[7])
	}

	out = env.mustRun(t, "ingredient", "update", "F001", "SUP003", "--from-catalog", "SUP005")
	requireContains(t, out, "Updated Demineralized water")

	out = env.mustRun(t, "ingredient", "delete", "F001", "ing-1")
	requireContains(t, out, "Deleted Ethyl alcohol 96%")
	requireContains(t, out, "no longer has a QSP ingredient")

	out = env.mustRun(t, "ingredient", "list", "F001")
	if strings.Contains(out, "Ethyl alcohol") {
		t.Fatalf("expected ethyl alcohol to be gone: %s", out)
	}
}

func TestSensoryCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")

	out := env.mustRun(t, "sensory", "presets")
	requireContains(t, out, "vanilla")
	requireContains(t, out, "Creamy 7")

	_, errOut, err := runCLI(t, []string{"sensory", "preset", "F001", "1", "vanilla"}, env.configPath)
	if err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	requireContains(t, errOut, `profile "Vanilla" applied`)

	out = env.mustRun(t, "sensory", "set", "F001", "1", "creamy", "3")
	requireContains(t, out, "Creamy: 3/10")
	out = env.mustRun(t, "sensory", "set", "F001", "2", "sweet", "15")
	requireContains(t, out, "Sweet: 10/10")

	out = env.mustRun(t, "sensory", "show", "F001")
	requireContains(t, out, "Creamy")

	_, errOut, err = runCLI(t, []string{"sensory", "descriptor", "add", "F001", "Nutty"}, env.configPath)
	if err != nil {
		t.Fatalf("add descriptor: %v", err)
	}
	requireContains(t, errOut, `descriptor "Nutty" added`)
	_, errOut, err = runCLI(t, []string{"sensory", "descriptor", "add", "F001", "nutty"}, env.configPath)
	if err != nil {
		t.Fatalf("add duplicate descriptor: %v", err)
	}
	requireContains(t, errOut, "already exists")

	out = env.mustRun(t, "sensory", "descriptor", "remove", "F001", "NUTTY")
	requireContains(t, out, "Removed descriptor Nutty")

	var profile struct {
		Descriptors []formulation.SensoryDescriptor       `json:"descriptors"`
		Trials      map[string][]formulation.SensoryScore `json:"trials"`
	}
	decodeJSON(t, env.mustRun(t, "sensory", "show", "F001", "--json"), &profile)
	if len(profile.Descriptors) != 6 {
		t.Fatalf("expected the 6 vanilla descriptors, got %+v", profile.Descriptors)
	}
	if len(profile.Trials["1"]) != 6 {
		t.Fatalf("expected trial 1 scored on 6 descriptors, got %+v", profile.Trials["1"])
	}

	if _, _, err := runCLI(t, []string{"sensory", "set", "F001", "1", "umami", "3"}, env.configPath); err == nil {
		t.Fatal("expected an unknown descriptor to fail")
	}
}

func TestCatalogCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "catalog", "search", "glycerin")
	requireContains(t, out, "SUP003")

	var entries []catalog.Entry
	decodeJSON(t, env.mustRun(t, "catalog", "search", "--type", "support", "--limit", "3", "--json"), &entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Type != formulation.TypeSupport {
			t.Fatalf("expected support entries only, got %+v", e)
		}
	}

	target := filepath.Join(env.baseDir, "catalog.csv")
	env.mustRun(t, "catalog", "export", "--output", target)
	exported, err := catalog.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	builtin, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if len(exported) != builtin.Len() {
		t.Fatalf("expected %d exported entries, got %d", builtin.Len(), len(exported))
	}
}

func TestUserCatalogIsMerged(t *testing.T) {
	env := setupCLITestEnv(t)
	userCatalog := filepath.Join(env.baseDir, "mine.csv")
	csv := "reference,name,type,classification,is_extract,extract_source,price,density,vanillin_rate,cas\n" +
		"USR001,Tonka absolute,aromatic,natural,true,tonka,900,1.0,0,\n"
	if err := os.WriteFile(userCatalog, []byte(csv), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	writeTestConfig(t, env.configPath, env.dataDir, fmt.Sprintf("\n[catalog]\npath = %q\n", userCatalog))

	out := env.mustRun(t, "catalog", "search", "tonka")
	requireContains(t, out, "USR001")

	env.mustRun(t, "sheet", "new")
	out = env.mustRun(t, "ingredient", "add", "F001", "--from-catalog", "USR001")
	requireContains(t, out, "Added Tonka absolute")
}

func TestReadOnlyCommandsDoNotTouchUpdatedAt(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")

	var before []sheetstore.Meta
	decodeJSON(t, env.mustRun(t, "sheet", "list", "--json"), &before)
	env.mustRun(t, "sheet", "show", "F001")
	env.mustRun(t, "analyze", "F001")
	var after []sheetstore.Meta
	decodeJSON(t, env.mustRun(t, "sheet", "list", "--json"), &after)
	if len(before) != 1 || len(after) != 1 || !before[0].UpdatedAt.Equal(after[0].UpdatedAt) {
		t.Fatalf("expected untouched index, before %+v after %+v", before, after)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")

	out := env.mustRun(t, "status")
	requireContains(t, out, "Sheet database")
	requireContains(t, out, "1 sheet(s)")
	requireContains(t, out, "Editor lock")
}

func TestLogsShowSheetHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sheet", "new")
	env.mustRun(t, "sheet", "new")
	env.mustRun(t, "trial", "mass", "F001", "1", "ing-3", "5")

	out := env.mustRun(t, "logs", "--sheet", "F001", "--debug", "--lines", "0")
	requireContains(t, out, "sheet created")
	requireContains(t, out, "action=set_mass")
	requireContains(t, out, "reference=F001")
	if strings.Contains(out, "reference=F002") {
		t.Fatalf("expected only F001 entries: %s", out)
	}

	out = env.mustRun(t, "logs", "--sheet", "F002")
	if strings.Contains(out, "set_mass") {
		t.Fatalf("expected no edits of F002: %s", out)
	}
}
