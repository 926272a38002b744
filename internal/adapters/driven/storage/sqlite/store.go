package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/sqlstore"
)

// DatabaseFile is the file name of the portfolio database inside the data directory.
const DatabaseFile = "portfolio.db"

// Dialect is the SQLite flavour of the shared relational store.
var Dialect = sqlstore.Dialect{
	Name:       "sqlite",
	Migrations: migrations.FS,
}

// Store is a SQLite-backed relational store.
type Store struct {
	*sqlstore.Store
	path string
}

// NewStore creates a new SQLite store in the specified data directory
// and applies pending migrations.
// If dataDir is empty, defaults to ~/.twinsync/data/portfolio.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".twinsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode for concurrent readers; foreign keys on every pooled connection.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		Store: sqlstore.New(db, Dialect, dbPath),
		path:  dbPath,
	}

	if err := s.EnsureSchema(context.Background(), false); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
