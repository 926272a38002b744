package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RelationalStore = (*Store)(nil)

// Dialect describes the differences between supported SQL engines.
type Dialect struct {
	// Name identifies the engine in logs and errors.
	Name string

	// Migrations holds the NNN_name.up.sql files for this engine.
	Migrations fs.FS

	// Numbered selects $1-style placeholders instead of ?.
	Numbered bool
}

// portfolioTables lists every table owned by the store, children first.
var portfolioTables = []string{
	"content_chunks",
	"json_content",
	"education",
	"projects",
	"skills",
	"experiences",
	"professionals",
}

// auditableFields are the (table.field) pairs CountEmpty accepts.
var auditableFields = map[string]bool{
	"professionals.name":        true,
	"professionals.email":       true,
	"experiences.company":       true,
	"experiences.position":      true,
	"skills.skill_name":         true,
	"content_chunks.content":    true,
	"content_chunks.chunk_type": true,
}

// Store is a database/sql backed relational store.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	location string
}

// New wraps an open database handle. location is reported by Location
// and is only informational.
func New(db *sql.DB, dialect Dialect, location string) *Store {
	return &Store{db: db, dialect: dialect, location: location}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Location returns the database path or DSN host the store was opened with.
func (s *Store) Location() string {
	return s.location
}

// Dialect returns the engine name.
func (s *Store) Dialect() string {
	return s.dialect.Name
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping: %w", s.dialect.Name, err)
	}
	return nil
}

// rebind rewrites ? placeholders for engines that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema applies pending migrations. With reset, every portfolio
// row is deleted afterwards so the next run starts from empty tables.
func (s *Store) EnsureSchema(ctx context.Context, reset bool) error {
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if !reset {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range portfolioTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(s.dialect.Migrations, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_portfolio.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(s.dialect.Migrations, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			s.rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CountRows returns the row count of a known table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	known := false
	for _, t := range portfolioTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("unknown table %q: %w", table, domain.ErrInvalidInput)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// CountEmpty returns rows where the field is NULL or blank.
func (s *Store) CountEmpty(ctx context.Context, check domain.FieldCheck) (int, error) {
	if !auditableFields[check.Table+"."+check.Field] {
		return 0, fmt.Errorf("unknown field %s.%s: %w", check.Table, check.Field, domain.ErrInvalidInput)
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL OR TRIM(%s) = ''",
		check.Table, check.Field, check.Field)
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting empty %s.%s: %w", check.Table, check.Field, err)
	}
	return n, nil
}

// nullString converts empty strings to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
