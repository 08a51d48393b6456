package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Full-text search across consumables, assortments, categories, products and brands",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// SearchInput captures search query parameters.
type SearchInput struct {
	Query        string `query:"q" doc:"Search query"`
	Types        string `query:"types" doc:"Comma-separated document types (consumable, assortment, category, product, brand)"`
	Brand        string `query:"brand" doc:"Filter products by brand slug"`
	AncestryPath string `query:"ancestry_path" doc:"Restrict hits to a catalog subtree by path prefix"`
	Limit        int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum results"`
	Offset       int    `query:"offset" minimum:"0" default:"0" doc:"Results to skip"`
	SortBy       string `query:"sort" enum:"relevance,title,recent" default:"relevance" doc:"Sort order"`
	Facets       bool   `query:"facets" default:"true" doc:"Include facet counts"`
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.BrandSlug = input.Brand
	params.AncestryPath = input.AncestryPath
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.SortBy = input.SortBy
	params.IncludeFacets = input.Facets

	if input.Types != "" {
		for _, t := range strings.Split(input.Types, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				params.Types = append(params.Types, t)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
