package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/service"
	"github.com/atoumapp/atoum-server/internal/store"
)

func (s *Server) registerShoppingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createShopping",
		Method:      http.MethodPost,
		Path:        "/api/v1/shoppings",
		Summary:     "Create shopping list",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShopping)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShoppings",
		Method:      http.MethodGet,
		Path:        "/api/v1/shoppings",
		Summary:     "List shopping lists",
		Description: "Open lists first, then by planning date, most recent first",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShoppings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShopping",
		Method:      http.MethodGet,
		Path:        "/api/v1/shoppings/{id}",
		Summary:     "Get shopping list",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShopping)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShoppingStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/shoppings/{id}/status",
		Summary:     "Get list progress",
		Description: "Returns the derived status plus checked and unchecked counts",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShoppingStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateShopping",
		Method:      http.MethodPatch,
		Path:        "/api/v1/shoppings/{id}",
		Summary:     "Update shopping list",
		Description: "Edits title and planning date. The done flag is derived, never set here.",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateShopping)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShopping",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shoppings/{id}",
		Summary:     "Delete shopping list",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteShopping)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShoppingItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/shoppings/{id}/items",
		Summary:     "List items",
		Description: "Returns the list's lines with each product's full catalog ancestry",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShoppingItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "addOrEditShoppingItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/shoppings/{id}/items",
		Summary:     "Add or edit item",
		Description: "Adds a product to the opened list, or replaces its quantity if already present. A quantity below 1 is rejected without mutating anything.",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddOrEditItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShoppingItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shoppings/{id}/items/{productID}",
		Summary:     "Delete item",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleShoppingItemDone",
		Method:      http.MethodPatch,
		Path:        "/api/v1/shoppings/{id}/items/{productID}/done",
		Summary:     "Check or uncheck item",
		Description: "Sets the line's done flag and re-derives the list's done flag in the same transaction",
		Tags:        []string{"Shopping"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleItemDone)
}

// === DTOs ===

// ShoppingBody carries the editable list fields.
type ShoppingBody struct {
	Title    string    `json:"title,omitempty" doc:"Optional display name"`
	Planning time.Time `json:"planning,omitempty" doc:"When the list is intended to be used; defaults to now"`
}

// ShoppingInput wraps a list create request.
type ShoppingInput struct {
	Body ShoppingBody
}

// ShoppingUpdateInput wraps a list update request.
type ShoppingUpdateInput struct {
	ID   string `path:"id" doc:"Shopping list identifier"`
	Body ShoppingBody
}

// ShoppingOutput wraps a single shopping list.
type ShoppingOutput struct {
	Body *domain.Shopping
}

// ShoppingListOutput wraps a list of shopping lists.
type ShoppingListOutput struct {
	Body []*domain.Shopping
}

// StatusOutput wraps a list's derived progress.
type StatusOutput struct {
	Body *domain.StatusRecord
}

// ItemDetailListOutput wraps resolved shopping lines.
type ItemDetailListOutput struct {
	Body []*store.ShoppingItemDetail
}

// AddItemBody is the request body for the add-or-edit operation.
type AddItemBody struct {
	ProductID string `json:"product_id" doc:"Product to add or edit"`
	Quantity  int    `json:"quantity" doc:"New quantity; below 1 the request is rejected as a no-op"`
}

// AddItemInput wraps an add-or-edit request.
type AddItemInput struct {
	ID   string `path:"id" doc:"Shopping list identifier"`
	Body AddItemBody
}

// ItemPathInput addresses one line of a list.
type ItemPathInput struct {
	ID        string `path:"id" doc:"Shopping list identifier"`
	ProductID string `path:"productID" doc:"Product identifier"`
}

// ToggleItemBody carries the explicit done flag for a toggle.
type ToggleItemBody struct {
	Done *bool `json:"done" doc:"Target done state, required"`
}

// ToggleItemInput wraps a toggle request.
type ToggleItemInput struct {
	ID        string `path:"id" doc:"Shopping list identifier"`
	ProductID string `path:"productID" doc:"Product identifier"`
	Body      ToggleItemBody
}

// ItemResultOutput wraps the outcome of an item mutation.
type ItemResultOutput struct {
	Body *service.ItemResult
}

// === Handlers ===

func (s *Server) handleCreateShopping(ctx context.Context, input *ShoppingInput) (*ShoppingOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	shopping, err := s.services.Shopping.CreateShopping(ctx, service.CreateShoppingInput{
		Title:    input.Body.Title,
		Planning: input.Body.Planning,
	})
	if err != nil {
		return nil, err
	}
	return &ShoppingOutput{Body: shopping}, nil
}

func (s *Server) handleListShoppings(ctx context.Context, _ *struct{}) (*ShoppingListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	shoppings, err := s.services.Shopping.ListShoppings(ctx)
	if err != nil {
		return nil, err
	}
	return &ShoppingListOutput{Body: shoppings}, nil
}

func (s *Server) handleGetShopping(ctx context.Context, input *IDInput) (*ShoppingOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	shopping, err := s.services.Shopping.GetShopping(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ShoppingOutput{Body: shopping}, nil
}

func (s *Server) handleGetShoppingStatus(ctx context.Context, input *IDInput) (*StatusOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	rec, err := s.services.Shopping.GetShoppingStatus(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{Body: rec}, nil
}

func (s *Server) handleUpdateShopping(ctx context.Context, input *ShoppingUpdateInput) (*ShoppingOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	shopping, err := s.services.Shopping.UpdateShopping(ctx, input.ID, service.CreateShoppingInput{
		Title:    input.Body.Title,
		Planning: input.Body.Planning,
	})
	if err != nil {
		return nil, err
	}
	return &ShoppingOutput{Body: shopping}, nil
}

func (s *Server) handleDeleteShopping(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Shopping.DeleteShopping(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Shopping list deleted"}}, nil
}

func (s *Server) handleListShoppingItems(ctx context.Context, input *IDInput) (*ItemDetailListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	items, err := s.services.Shopping.ListItems(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemDetailListOutput{Body: items}, nil
}

func (s *Server) handleAddOrEditItem(ctx context.Context, input *AddItemInput) (*ItemResultOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Shopping.AddOrEditItem(ctx, sessionID, input.ID, input.Body.ProductID, input.Body.Quantity)
	if err != nil {
		return nil, err
	}
	return &ItemResultOutput{Body: result}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemPathInput) (*ItemResultOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Shopping.DeleteItem(ctx, sessionID, input.ID, input.ProductID)
	if err != nil {
		return nil, err
	}
	return &ItemResultOutput{Body: result}, nil
}

func (s *Server) handleToggleItemDone(ctx context.Context, input *ToggleItemInput) (*ItemResultOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Shopping.ToggleItemDone(ctx, sessionID, input.ID, input.ProductID, *input.Body.Done)
	if err != nil {
		return nil, err
	}
	return &ItemResultOutput{Body: result}, nil
}
