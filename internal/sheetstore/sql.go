package sheetstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"

	"aromasheet/internal/formulation"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by another version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const indexColumns = "id, name, reference, responsible, client, application, created_at, updated_at"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// SQLStore keeps sheets in a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// OpenSQL connects to the database, applies the schema on first use, and
// checks the schema version. For SQLite the dsn is a file path.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	ctx = ensureContext(ctx)
	d, ok := dialectFor(driver)
	if !ok {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: empty data source", d.name)
	}

	openMu.Lock()
	db, err := sqlOpen(d.sqlDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.name, err)
	}

	if d.name == DriverSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	store := &SQLStore{db: db, dialect: d}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver names the dialect in use.
func (s *SQLStore) Driver() string { return s.dialect.name }

func (s *SQLStore) initSchema(ctx context.Context) error {
	var tableExists int
	if err := s.db.QueryRowContext(ctx, s.dialect.rebind(s.dialect.tableExists), "schema_version").Scan(&tableExists); err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (export your sheets and recreate the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *SQLStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind("INSERT INTO schema_version (version) VALUES (?)"), schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, retrying the whole transaction while the
// database is busy.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func (s *SQLStore) LoadSheet(ctx context.Context, id string) (*formulation.Sheet, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT payload FROM sheet_documents WHERE id = ?"), id).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sheet %s: %w", id, err)
	}
	return decodeSheet(id, []byte(payload))
}

func (s *SQLStore) SaveSheet(ctx context.Context, id string, sheet formulation.Sheet) error {
	data, err := encodeSheet(id, sheet)
	if err != nil {
		return err
	}
	ctx = ensureContext(ctx)
	query := s.dialect.rebind(`INSERT INTO sheet_documents (id, payload, saved_at) VALUES (?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`)
	if err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, query, id, string(data), formatTime(now()))
		return execErr
	}); err != nil {
		return fmt.Errorf("save sheet %s: %w", id, err)
	}
	return nil
}

func (s *SQLStore) LoadIndex(ctx context.Context) ([]Meta, error) {
	ctx = ensureContext(ctx)
	var index []Meta
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT `+indexColumns+` FROM sheet_index ORDER BY position`)
		if err != nil {
			return err
		}
		defer rows.Close()

		index = index[:0]
		for rows.Next() {
			meta, err := scanMeta(rows)
			if err != nil {
				return err
			}
			index = append(index, meta)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	if index == nil {
		index = []Meta{}
	}
	return index, nil
}

func (s *SQLStore) SaveIndex(ctx context.Context, index []Meta) error {
	ctx = ensureContext(ctx)
	insert := s.dialect.rebind(`INSERT INTO sheet_index (position, ` + indexColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_index"); err != nil {
			return err
		}
		for i, m := range index {
			if _, err := tx.ExecContext(ctx, insert,
				i, m.ID, m.Name, m.Reference, m.Responsible, m.Client, m.Application,
				formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
			); err != nil {
				return fmt.Errorf("insert %s: %w", m.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteSheet(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	var affected int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		affected = 0
		for _, query := range []string{
			"DELETE FROM sheet_documents WHERE id = ?",
			"DELETE FROM sheet_index WHERE id = ?",
		} {
			res, err := tx.ExecContext(ctx, s.dialect.rebind(query), id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete sheet %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) DuplicateSheet(ctx context.Context, id string) (string, error) {
	return duplicateSheet(ensureContext(ctx), s, id)
}

func (s *SQLStore) NextReference(ctx context.Context) (string, error) {
	return nextReference(ensureContext(ctx), s)
}

func scanMeta(scanner interface{ Scan(dest ...any) error }) (Meta, error) {
	var (
		m                   Meta
		createdRaw, updated string
	)
	if err := scanner.Scan(&m.ID, &m.Name, &m.Reference, &m.Responsible, &m.Client, &m.Application, &createdRaw, &updated); err != nil {
		return Meta{}, err
	}
	m.CreatedAt = parseTime(createdRaw)
	m.UpdatedAt = parseTime(updated)
	return m, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OverrideSQLOpen swaps the function used to open database handles and
// returns a restore func. Intended for tests.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
