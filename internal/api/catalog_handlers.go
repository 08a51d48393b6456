package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	// Consumables
	huma.Register(s.api, huma.Operation{
		OperationID: "createConsumable",
		Method:      http.MethodPost,
		Path:        "/api/v1/consumables",
		Summary:     "Create consumable",
		Description: "Creates a root-level catalog entry",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateConsumable)

	huma.Register(s.api, huma.Operation{
		OperationID: "listConsumables",
		Method:      http.MethodGet,
		Path:        "/api/v1/consumables",
		Summary:     "List consumables",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListConsumables)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConsumable",
		Method:      http.MethodGet,
		Path:        "/api/v1/consumables/{id}",
		Summary:     "Get consumable",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetConsumable)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateConsumable",
		Method:      http.MethodPatch,
		Path:        "/api/v1/consumables/{id}",
		Summary:     "Rename consumable",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateConsumable)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteConsumable",
		Method:      http.MethodDelete,
		Path:        "/api/v1/consumables/{id}",
		Summary:     "Delete consumable",
		Description: "Deletes a consumable and everything under it",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteConsumable)

	// Assortments
	huma.Register(s.api, huma.Operation{
		OperationID: "createAssortment",
		Method:      http.MethodPost,
		Path:        "/api/v1/assortments",
		Summary:     "Create assortment",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAssortment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAssortments",
		Method:      http.MethodGet,
		Path:        "/api/v1/assortments",
		Summary:     "List assortments",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAssortments)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAssortment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/assortments/{id}",
		Summary:     "Rename assortment",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAssortment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAssortment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/assortments/{id}",
		Summary:     "Delete assortment",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAssortment)

	// Categories
	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Rename category",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)

	// Tree
	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalogTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/tree",
		Summary:     "Full catalog tree",
		Description: "Returns the complete four-level hierarchy in one response",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCatalogTree)
}

// === DTOs ===

// IDInput is a bare path-parameter input.
type IDInput struct {
	ID string `path:"id" doc:"Resource identifier"`
}

// TitleBody carries a single title field for create and rename requests.
type TitleBody struct {
	Title string `json:"title" doc:"Display title"`
}

// TitleInput wraps a title change for Huma.
type TitleInput struct {
	ID   string `path:"id" doc:"Resource identifier"`
	Body TitleBody
}

// ConsumableOutput wraps a single consumable.
type ConsumableOutput struct {
	Body *domain.Consumable
}

// ConsumableListOutput wraps a consumable list.
type ConsumableListOutput struct {
	Body []*domain.Consumable
}

// CreateAssortmentBody is the request body for a new assortment.
type CreateAssortmentBody struct {
	ConsumableID string `json:"consumable_id" doc:"Parent consumable ID"`
	Title        string `json:"title" doc:"Display title"`
}

// CreateAssortmentInput wraps the assortment creation request.
type CreateAssortmentInput struct {
	Body CreateAssortmentBody
}

// ListAssortmentsInput filters assortments by parent.
type ListAssortmentsInput struct {
	ConsumableID string `query:"consumable_id" doc:"Filter by parent consumable"`
}

// AssortmentOutput wraps a single assortment.
type AssortmentOutput struct {
	Body *domain.Assortment
}

// AssortmentListOutput wraps an assortment list.
type AssortmentListOutput struct {
	Body []*domain.Assortment
}

// CreateCategoryBody is the request body for a new category.
type CreateCategoryBody struct {
	AssortmentID string `json:"assortment_id" doc:"Parent assortment ID"`
	Title        string `json:"title" doc:"Display title"`
}

// CreateCategoryInput wraps the category creation request.
type CreateCategoryInput struct {
	Body CreateCategoryBody
}

// ListCategoriesInput filters categories by parent.
type ListCategoriesInput struct {
	AssortmentID string `query:"assortment_id" doc:"Filter by parent assortment"`
}

// CategoryOutput wraps a single category.
type CategoryOutput struct {
	Body *domain.Category
}

// CategoryListOutput wraps a category list.
type CategoryListOutput struct {
	Body []*domain.Category
}

// TreeOutput wraps the resolved catalog tree.
type TreeOutput struct {
	Body []*service.TreeConsumable
}

// === Handlers ===

func (s *Server) handleCreateConsumable(ctx context.Context, input *struct{ Body TitleBody }) (*ConsumableOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.CreateConsumable(ctx, service.CreateConsumableInput{Title: input.Body.Title})
	if err != nil {
		return nil, err
	}
	return &ConsumableOutput{Body: c}, nil
}

func (s *Server) handleListConsumables(ctx context.Context, _ *struct{}) (*ConsumableListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	consumables, err := s.services.Catalog.ListConsumables(ctx)
	if err != nil {
		return nil, err
	}
	return &ConsumableListOutput{Body: consumables}, nil
}

func (s *Server) handleGetConsumable(ctx context.Context, input *IDInput) (*ConsumableOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.GetConsumable(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ConsumableOutput{Body: c}, nil
}

func (s *Server) handleUpdateConsumable(ctx context.Context, input *TitleInput) (*ConsumableOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.UpdateConsumable(ctx, input.ID, service.CreateConsumableInput{Title: input.Body.Title})
	if err != nil {
		return nil, err
	}
	return &ConsumableOutput{Body: c}, nil
}

func (s *Server) handleDeleteConsumable(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteConsumable(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Consumable deleted"}}, nil
}

func (s *Server) handleCreateAssortment(ctx context.Context, input *CreateAssortmentInput) (*AssortmentOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	a, err := s.services.Catalog.CreateAssortment(ctx, service.CreateAssortmentInput{
		ConsumableID: input.Body.ConsumableID,
		Title:        input.Body.Title,
	})
	if err != nil {
		return nil, err
	}
	return &AssortmentOutput{Body: a}, nil
}

func (s *Server) handleListAssortments(ctx context.Context, input *ListAssortmentsInput) (*AssortmentListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	assortments, err := s.services.Catalog.ListAssortments(ctx, input.ConsumableID)
	if err != nil {
		return nil, err
	}
	return &AssortmentListOutput{Body: assortments}, nil
}

func (s *Server) handleUpdateAssortment(ctx context.Context, input *TitleInput) (*AssortmentOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	a, err := s.services.Catalog.UpdateAssortment(ctx, input.ID, service.UpdateAssortmentInput{Title: input.Body.Title})
	if err != nil {
		return nil, err
	}
	return &AssortmentOutput{Body: a}, nil
}

func (s *Server) handleDeleteAssortment(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteAssortment(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Assortment deleted"}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.CreateCategory(ctx, service.CreateCategoryInput{
		AssortmentID: input.Body.AssortmentID,
		Title:        input.Body.Title,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: c}, nil
}

func (s *Server) handleListCategories(ctx context.Context, input *ListCategoriesInput) (*CategoryListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	categories, err := s.services.Catalog.ListCategories(ctx, input.AssortmentID)
	if err != nil {
		return nil, err
	}
	return &CategoryListOutput{Body: categories}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *TitleInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.UpdateCategory(ctx, input.ID, service.UpdateCategoryInput{Title: input.Body.Title})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: c}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}

func (s *Server) handleGetCatalogTree(ctx context.Context, _ *struct{}) (*TreeOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tree, err := s.services.Catalog.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return &TreeOutput{Body: tree}, nil
}
