// Package mcp provides an MCP (Model Context Protocol) server adapter for twinsync.
// It lets AI assistants search the synced profile and audit the two stores.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
