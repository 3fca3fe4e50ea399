package config

import (
	"errors"
	"fmt"
	"math"

	"aromasheet/internal/formulation"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateFormulation(); err != nil {
		return err
	}
	if err := c.validatePricing(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is postgres (or set %s)", envDatabaseDSN)
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite or postgres, got %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) validateFormulation() error {
	f := c.Formulation
	if !(f.DefaultTargetMass > 0) || math.IsInf(f.DefaultTargetMass, 0) {
		return errors.New("formulation.default_target_mass must be a positive number of grams")
	}
	if f.InitialTrials < 1 || f.InitialTrials > formulation.MaxTrials {
		return fmt.Errorf("formulation.initial_trials must be between 1 and %d", formulation.MaxTrials)
	}
	return nil
}

func (c *Config) validatePricing() error {
	if c.Pricing.TargetSalePrice < 0 {
		return errors.New("pricing.target_sale_price must be >= 0")
	}
	if !(c.Pricing.Factor > 0) {
		return errors.New("pricing.factor must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.SearchLimit < 1 {
		return errors.New("catalog.search_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
}
