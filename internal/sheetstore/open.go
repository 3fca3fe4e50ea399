package sheetstore

import (
	"context"
	"errors"

	"aromasheet/internal/config"
)

// Open returns the store configured in cfg. For SQLite the data directory is
// created first.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("sheetstore: config is required")
	}
	if cfg.Storage.Driver == DriverSQLite || cfg.Storage.Driver == "" {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
	}
	return OpenSQL(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
}
