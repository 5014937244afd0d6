package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for gamefeed resources.
	uriScheme = "gamefeed://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "Game categories accepted by list_games",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "games/{gameId}",
		Name:        "game",
		Description: "Details of a specific game",
		MIMEType:    "application/json",
	}, s.handleGameResource)

	if s.ports.News != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "news/{articleId}",
			Name:        "article",
			Description: "A previously synced news article",
			MIMEType:    "application/json",
		}, s.handleArticleResource)
	}
}

func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := make([]string, len(domain.GameCategories))
	for i, c := range domain.GameCategories {
		names[i] = c.String()
	}
	return jsonResult(req.Params.URI, names)
}

func (s *Server) handleGameResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractID(req.Params.URI, "games/")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	game, err := s.ports.Catalog.GetGame(ctx, id)
	if domain.IsNotFound(err) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return jsonResult(req.Params.URI, gameOutput(game))
}

func (s *Server) handleArticleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractID(req.Params.URI, "news/")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	article, err := s.ports.News.GetArticle(ctx, id)
	if domain.IsNotFound(err) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	return jsonResult(req.Params.URI, article)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID extracts a positive numeric id from a URI like gamefeed://games/{id}.
func extractID(uri, kind string) (int64, bool) {
	prefix := uriScheme + kind
	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
