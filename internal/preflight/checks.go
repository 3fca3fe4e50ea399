package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"aromasheet/internal/catalog"
	"aromasheet/internal/config"
	"aromasheet/internal/sheetstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the configured database and reads the sheet index.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	name := "Sheet database"
	store, err := sheetstore.Open(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Storage.Driver, err)}
	}
	defer store.Close()

	index, err := store.LoadIndex(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: read index: %v)", cfg.Storage.Driver, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s, %d sheet(s)", cfg.Storage.Driver, len(index))}
}

// CheckCatalog loads the built-in catalog and the optional user file.
func CheckCatalog(path string) Result {
	name := "Ingredient catalog"
	cat, err := catalog.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
	}
	detail := fmt.Sprintf("%d entries (built-in)", cat.Len())
	if path != "" {
		detail = fmt.Sprintf("%d entries including %s", cat.Len(), path)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckLock reports whether another editor holds the data directory. The
// lock is released immediately when it could be taken.
func CheckLock(path string) Result {
	name := "Editor lock"
	lock, err := sheetstore.AcquireLock(path)
	if err != nil {
		if errors.Is(err, sheetstore.ErrLocked) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (held by another aromasheet process)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	lock.Release()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (free)", path)}
}
