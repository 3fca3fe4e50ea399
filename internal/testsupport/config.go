package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"aromasheet/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage defaults to a SQLite file under the data directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.DSN = filepath.Join(cfgVal.Paths.DataDir, "aromasheet.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPricing sets the target sale price and factor.
func WithPricing(salePrice, factor float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pricing.TargetSalePrice = salePrice
		b.cfg.Pricing.Factor = factor
	}
}

// WithUserCatalog writes contents to a catalog file in the temp directory
// and points the config at it. The extension picks the format.
func WithUserCatalog(name, contents string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			b.t.Fatalf("write catalog %s: %v", name, err)
		}
		b.cfg.Catalog.Path = path
	}
}

// WithConfigFile writes cfgText as a TOML config file and returns its path
// through dst.
func WithConfigFile(cfgText string, dst *string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "aromasheet.toml")
		if err := os.WriteFile(path, []byte(cfgText), 0o644); err != nil {
			b.t.Fatalf("write config: %v", err)
		}
		*dst = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
