// Package sqlite opens the relational store on a local SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Queries and the store
// behaviour are shared with the PostgreSQL adapter through package sqlstore;
// this package contributes the driver, the connection pragmas and the
// SQLite migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.twinsync/data/portfolio.db
package sqlite
