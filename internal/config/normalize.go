package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeFormulation()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(envDataDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	if value, ok := os.LookupEnv(envStorageDriver); ok && strings.TrimSpace(value) != "" {
		c.Storage.Driver = value
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = defaultStorageDriver
	case "sqlite3":
		c.Storage.Driver = "sqlite"
	case "postgresql", "pgx":
		c.Storage.Driver = "postgres"
	}

	if value, ok := os.LookupEnv(envDatabaseDSN); ok && strings.TrimSpace(value) != "" {
		c.Storage.DSN = value
	}
	c.Storage.DSN = strings.TrimSpace(c.Storage.DSN)
	if c.Storage.Driver == "sqlite" {
		if c.Storage.DSN == "" {
			c.Storage.DSN = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
			return nil
		}
		var err error
		if c.Storage.DSN, err = expandPath(c.Storage.DSN); err != nil {
			return fmt.Errorf("storage.dsn: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFormulation() {
	if c.Formulation.DefaultTargetMass == 0 {
		c.Formulation.DefaultTargetMass = defaultTargetMass
	}
	if c.Formulation.InitialTrials == 0 {
		c.Formulation.InitialTrials = defaultInitialTrials
	}
	c.Formulation.DefaultQSP = strings.TrimSpace(c.Formulation.DefaultQSP)
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path != "" {
		var err error
		if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
			return fmt.Errorf("catalog.path: %w", err)
		}
	}
	if c.Catalog.SearchLimit == 0 {
		c.Catalog.SearchLimit = defaultCatalogLimit
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
