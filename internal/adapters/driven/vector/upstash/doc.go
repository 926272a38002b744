// Package upstash implements the vector store port against the Upstash
// Vector REST API.
//
// The index embeds text server side, so the client sends raw chunk text with
// /upsert-data and queries with /query-data. Metadata filters are rendered in
// the service's SQL-like syntax. Requests are paced by a token bucket and
// 429 responses open a backoff window before a bounded retry.
package upstash
