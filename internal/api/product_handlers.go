package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/service"
	"github.com/atoumapp/atoum-server/internal/store"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Create product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns a cursor-paginated page of products, or all products of one category",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get product",
		Description: "Returns a product with its full catalog ancestry resolved",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPatch,
		Path:        "/api/v1/products/{id}",
		Summary:     "Update product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/products/{id}",
		Summary:     "Delete product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProduct)
}

// === DTOs ===

// ProductBody carries the editable product fields.
type ProductBody struct {
	CategoryID  string `json:"category_id" doc:"Parent category ID"`
	BrandID     string `json:"brand_id,omitempty" doc:"Brand ID, optional"`
	Title       string `json:"title" doc:"Display title"`
	Description string `json:"description,omitempty" doc:"Free-text description"`
	Cover       string `json:"cover,omitempty" doc:"Cover image URL"`
}

// ProductInput wraps a product create request.
type ProductInput struct {
	Body ProductBody
}

// ProductUpdateInput wraps a product update request.
type ProductUpdateInput struct {
	ID   string `path:"id" doc:"Product identifier"`
	Body ProductBody
}

// ListProductsInput carries pagination and filter parameters.
type ListProductsInput struct {
	Limit      int    `query:"limit" doc:"Page size (default 100, max 1000)"`
	Cursor     string `query:"cursor" doc:"Opaque cursor for the next page"`
	CategoryID string `query:"category_id" doc:"Return all products of one category instead of a page"`
}

// ProductOutput wraps a single product.
type ProductOutput struct {
	Body *domain.Product
}

// ProductHierarchyOutput wraps a product with resolved ancestry.
type ProductHierarchyOutput struct {
	Body *domain.ProductHierarchy
}

// ProductPageOutput wraps a paginated product page.
type ProductPageOutput struct {
	Body *store.PaginatedResult[*domain.Product]
}

// === Handlers ===

func (s *Server) handleCreateProduct(ctx context.Context, input *ProductInput) (*ProductOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.services.Catalog.CreateProduct(ctx, productInputFromBody(input.Body))
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: p}, nil
}

func (s *Server) handleListProducts(ctx context.Context, input *ListProductsInput) (*ProductPageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if input.CategoryID != "" {
		products, err := s.services.Catalog.ListProductsByCategory(ctx, input.CategoryID)
		if err != nil {
			return nil, err
		}
		return &ProductPageOutput{Body: &store.PaginatedResult[*domain.Product]{
			Items: products,
			Total: len(products),
		}}, nil
	}

	page, err := s.services.Catalog.ListProducts(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPageOutput{Body: page}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *IDInput) (*ProductHierarchyOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	h, err := s.services.Catalog.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProductHierarchyOutput{Body: h}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *ProductUpdateInput) (*ProductOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.services.Catalog.UpdateProduct(ctx, input.ID, productInputFromBody(input.Body))
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: p}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteProduct(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Product deleted"}}, nil
}

func productInputFromBody(body ProductBody) service.CreateProductInput {
	return service.CreateProductInput{
		CategoryID:  body.CategoryID,
		BrandID:     body.BrandID,
		Title:       body.Title,
		Description: body.Description,
		Cover:       body.Cover,
	}
}
