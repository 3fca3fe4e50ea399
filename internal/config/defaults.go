package config

import "aromasheet/internal/formulation"

const (
	defaultDataDir         = "~/.local/share/aromasheet"
	defaultLogDir          = "~/.local/share/aromasheet/logs"
	defaultStorageDriver   = "sqlite"
	defaultSQLiteFile      = "aromasheet.db"
	defaultPricingFactor   = 2.5
	defaultCatalogLimit    = 100
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultTargetMass      = formulation.DefaultTargetMass
	defaultInitialTrials   = formulation.DefaultTrialCount
	defaultAutoDilution    = true
	defaultRescaleOnChange = false
	envDataDir             = "AROMASHEET_DATA_DIR"
	envDatabaseDSN         = "AROMASHEET_DATABASE_DSN"
	envStorageDriver       = "AROMASHEET_STORAGE_DRIVER"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Driver: defaultStorageDriver,
		},
		Formulation: Formulation{
			DefaultTargetMass:     defaultTargetMass,
			InitialTrials:         defaultInitialTrials,
			AutoDilution:          defaultAutoDilution,
			RescaleOnTargetChange: defaultRescaleOnChange,
		},
		Pricing: Pricing{
			Factor: defaultPricingFactor,
		},
		Catalog: Catalog{
			SearchLimit: defaultCatalogLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
