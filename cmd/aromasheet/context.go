package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"aromasheet/internal/catalog"
	"aromasheet/internal/config"
	"aromasheet/internal/logging"
	"aromasheet/internal/sheetstore"
	"aromasheet/internal/workbench"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	catalogOnce sync.Once
	catalog     *catalog.Catalog
	catalogErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureCatalog loads the built-in catalog merged with the configured user
// file.
func (c *commandContext) ensureCatalog() (*catalog.Catalog, error) {
	c.catalogOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.catalogErr = err
			return
		}
		c.catalog, c.catalogErr = catalog.Load(cfg.Catalog.Path)
	})
	return c.catalog, c.catalogErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Writer:   cmd.ErrOrStderr(),
		FilePath: cfg.LogPath(),
	})
}

// withWorkbench opens the store for the duration of fn. Mutating commands
// hold the editor lock so two editors never interleave writes.
func (c *commandContext) withWorkbench(cmd *cobra.Command, mutate bool, fn func(context.Context, *workbench.Workbench) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if mutate {
		lock, err := sheetstore.AcquireLock(cfg.LockPath())
		if err != nil {
			return err
		}
		defer lock.Release()
	}
	logger, closeLog, err := c.logger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	cat, err := c.ensureCatalog()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := sheetstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	wb := workbench.New(cfg, store, logger,
		workbench.WithCatalog(cat),
		workbench.WithNotifier(noticePrinter(cmd.ErrOrStderr())),
	)
	return fn(ctx, wb)
}

// withSession opens the sheet named by ref and runs fn on it.
func (c *commandContext) withSession(cmd *cobra.Command, ref string, mutate bool, fn func(context.Context, *workbench.Session) error) error {
	return c.withWorkbench(cmd, mutate, func(ctx context.Context, wb *workbench.Workbench) error {
		session, err := wb.Open(ctx, ref)
		if err != nil {
			return err
		}
		if !mutate {
			session.Autosave = false
		}
		return fn(logging.WithSheetID(ctx, session.ID()), session)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseTrial(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid trial number %q", value)
	}
	return n, nil
}

// parseQuantity reads a number, accepting a decimal comma. Anything else
// yields NaN, which the reducer coerces like any other invalid entry.
func parseQuantity(cmd *cobra.Command, value string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a number\n", value)
		return math.NaN()
	}
	return v
}
