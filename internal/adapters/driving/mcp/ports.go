package mcp

import (
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog serves game categories, search and lookups.
	Catalog driving.CatalogService

	// News serves articles. Optional: without it list_news is not registered.
	News driving.NewsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
