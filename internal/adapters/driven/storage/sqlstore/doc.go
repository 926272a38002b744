// Package sqlstore implements driven.RelationalStore over database/sql.
//
// The same queries serve SQLite and PostgreSQL. A Dialect supplies the
// migration files and the placeholder style; everything else is shared.
// Driver-specific constructors live in the sqlite and postgres packages.
//
// # Schema
//
// Migrations are numbered NNN_name.up.sql files applied in order and
// recorded in schema_migrations. Array-valued profile fields are stored
// as JSON text so both engines read them back identically.
//
// # Thread Safety
//
// All operations are safe for concurrent use; *sql.DB is a connection pool.
package sqlstore
