package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/sqlstore"
)

// Dialect is the PostgreSQL flavour of the shared relational store.
var Dialect = sqlstore.Dialect{
	Name:       "postgres",
	Migrations: migrations.FS,
	Numbered:   true,
}

// Store is a PostgreSQL-backed relational store.
type Store struct {
	*sqlstore.Store
}

// NewStore connects to PostgreSQL using a URL or key=value DSN and applies
// pending migrations.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: empty DSN")
	}

	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres DSN: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{Store: sqlstore.New(db, Dialect, RedactDSN(dsn))}

	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx, false); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// RedactDSN returns the DSN with any password removed, for display.
func RedactDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "postgres"
		}
		return u.Redacted()
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
