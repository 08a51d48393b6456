package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/service"
)

func (s *Server) registerBrandRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBrand",
		Method:      http.MethodPost,
		Path:        "/api/v1/brands",
		Summary:     "Create brand",
		Tags:        []string{"Brands"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBrand)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBrands",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands",
		Summary:     "List brands",
		Tags:        []string{"Brands"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBrands)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBrand",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands/{id}",
		Summary:     "Get brand",
		Tags:        []string{"Brands"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBrand)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBrand",
		Method:      http.MethodPatch,
		Path:        "/api/v1/brands/{id}",
		Summary:     "Update brand",
		Tags:        []string{"Brands"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBrand)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBrand",
		Method:      http.MethodDelete,
		Path:        "/api/v1/brands/{id}",
		Summary:     "Delete brand",
		Description: "Deletes a brand; products referencing it keep existing without a brand",
		Tags:        []string{"Brands"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBrand)
}

// === DTOs ===

// BrandBody carries the editable brand fields.
type BrandBody struct {
	Title string `json:"title" doc:"Display title"`
	Cover string `json:"cover,omitempty" doc:"Cover image URL"`
}

// BrandInput wraps a brand create request.
type BrandInput struct {
	Body BrandBody
}

// BrandUpdateInput wraps a brand update request.
type BrandUpdateInput struct {
	ID   string `path:"id" doc:"Brand identifier"`
	Body BrandBody
}

// BrandOutput wraps a single brand.
type BrandOutput struct {
	Body *domain.Brand
}

// BrandListOutput wraps a brand list.
type BrandListOutput struct {
	Body []*domain.Brand
}

// === Handlers ===

func (s *Server) handleCreateBrand(ctx context.Context, input *BrandInput) (*BrandOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	b, err := s.services.Catalog.CreateBrand(ctx, service.CreateBrandInput{
		Title: input.Body.Title,
		Cover: input.Body.Cover,
	})
	if err != nil {
		return nil, err
	}
	return &BrandOutput{Body: b}, nil
}

func (s *Server) handleListBrands(ctx context.Context, _ *struct{}) (*BrandListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	brands, err := s.services.Catalog.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	return &BrandListOutput{Body: brands}, nil
}

func (s *Server) handleGetBrand(ctx context.Context, input *IDInput) (*BrandOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	b, err := s.services.Catalog.GetBrand(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BrandOutput{Body: b}, nil
}

func (s *Server) handleUpdateBrand(ctx context.Context, input *BrandUpdateInput) (*BrandOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	b, err := s.services.Catalog.UpdateBrand(ctx, input.ID, service.CreateBrandInput{
		Title: input.Body.Title,
		Cover: input.Body.Cover,
	})
	if err != nil {
		return nil, err
	}
	return &BrandOutput{Body: b}, nil
}

func (s *Server) handleDeleteBrand(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBrand(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Brand deleted"}}, nil
}
