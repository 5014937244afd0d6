// Package mcp provides an MCP (Model Context Protocol) server adapter for gamefeed.
// It lets AI assistants browse the locally synced game catalogue and news.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")
