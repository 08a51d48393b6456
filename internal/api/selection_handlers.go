package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/atoumapp/atoum-server/internal/domain"
)

func (s *Server) registerSelectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "openShopping",
		Method:      http.MethodPost,
		Path:        "/api/v1/shoppings/{id}/open",
		Summary:     "Open a shopping list",
		Description: "Marks the list as the session's working list. Any previously opened list is replaced.",
		Tags:        []string{"Selection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleOpenShopping)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeSelection",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/close",
		Summary:     "Close the opened shopping list",
		Description: "Clears the session's working list. Closing with nothing opened is a no-op.",
		Tags:        []string{"Selection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCloseSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/selection",
		Summary:     "Get the opened shopping list",
		Description: "Returns the session's working list, or null when nothing is opened",
		Tags:        []string{"Selection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSelection)
}

// OpenShoppingBody carries the optional post-open destination.
type OpenShoppingBody struct {
	Next string `json:"next,omitempty" doc:"Where the client should navigate after opening"`
}

// OpenShoppingInput wraps an open request.
type OpenShoppingInput struct {
	ID   string `path:"id" doc:"Shopping list identifier"`
	Body OpenShoppingBody
}

// OpenShoppingResponse tells the client where to go next.
type OpenShoppingResponse struct {
	Redirect string `json:"redirect" doc:"Destination to navigate to"`
}

// OpenShoppingOutput wraps an open response.
type OpenShoppingOutput struct {
	Body OpenShoppingResponse
}

// SelectionOutput wraps the resolved working list. Body is null when no
// list is opened for the session.
type SelectionOutput struct {
	Body *domain.Inventory
}

func (s *Server) handleOpenShopping(ctx context.Context, input *OpenShoppingInput) (*OpenShoppingOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	redirect, err := s.services.Shopping.OpenSelection(ctx, sessionID, input.ID, input.Body.Next)
	if err != nil {
		return nil, err
	}
	return &OpenShoppingOutput{Body: OpenShoppingResponse{Redirect: redirect}}, nil
}

func (s *Server) handleCloseSelection(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shopping.CloseSelection(ctx, sessionID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Selection closed"}}, nil
}

func (s *Server) handleGetSelection(ctx context.Context, _ *struct{}) (*SelectionOutput, error) {
	sessionID, err := GetSessionID(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := s.services.Shopping.ResolveSelection(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SelectionOutput{Body: inv}, nil
}
