// Package postgres opens the relational store on PostgreSQL using lib/pq.
//
// Queries are shared with the SQLite adapter through package sqlstore; this
// package contributes the driver, numbered placeholders and migrations that
// use SERIAL keys and JSONB columns. The store is selected when DATABASE_URL
// is set or relational.driver is postgres.
package postgres
