package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/atoumapp/atoum-server/internal/domain"
	domainerrors "github.com/atoumapp/atoum-server/internal/errors"
	"github.com/atoumapp/atoum-server/internal/id"
	"github.com/atoumapp/atoum-server/internal/store"
	"github.com/atoumapp/atoum-server/internal/validation"
)

// ShoppingService manages shopping lists, their line items, and the
// per-session selection of the currently opened list.
//
// Item mutations are only allowed against the caller's currently selected
// list; a mismatch reads as not-found so a handler can never operate on a
// list the session does not have open.
type ShoppingService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewShoppingService creates a new shopping service.
func NewShoppingService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ShoppingService {
	return &ShoppingService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// --- Lists ---

// CreateShoppingInput contains the fields for a new shopping list.
type CreateShoppingInput struct {
	Title    string    `json:"title,omitempty" validate:"omitempty,max=100"`
	Planning time.Time `json:"planning"`
}

// CreateShopping creates an empty list. New lists always start not-done:
// completion requires at least one checked item.
func (s *ShoppingService) CreateShopping(ctx context.Context, input CreateShoppingInput) (*domain.Shopping, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	planning := input.Planning
	if planning.IsZero() {
		planning = now
	}

	shopping := &domain.Shopping{
		ID:        id.MustGenerate("shp"),
		Title:     input.Title,
		Planning:  planning,
		Done:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateShopping(ctx, shopping); err != nil {
		return nil, fmt.Errorf("create shopping: %w", err)
	}

	s.logger.Info("shopping list created", "shopping_id", shopping.ID)
	return shopping, nil
}

// GetShopping returns a shopping list by id.
func (s *ShoppingService) GetShopping(ctx context.Context, shoppingID string) (*domain.Shopping, error) {
	shopping, err := s.store.GetShopping(ctx, shoppingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("shopping list not found")
		}
		return nil, fmt.Errorf("get shopping: %w", err)
	}
	return shopping, nil
}

// GetShoppingStatus returns the list's derived progress record.
func (s *ShoppingService) GetShoppingStatus(ctx context.Context, shoppingID string) (*domain.StatusRecord, error) {
	shopping, err := s.GetShopping(ctx, shoppingID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListShoppingItems(ctx, shoppingID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	rec := shopping.Status(items)
	return &rec, nil
}

// ListShoppings returns all lists, open ones first, most recently planned first.
func (s *ShoppingService) ListShoppings(ctx context.Context) ([]*domain.Shopping, error) {
	return s.store.ListShoppings(ctx)
}

// UpdateShopping replaces a list's title and planning time.
// The done flag is not editable here; it only moves through the
// item-mutation derivation.
func (s *ShoppingService) UpdateShopping(ctx context.Context, shoppingID string, input CreateShoppingInput) (*domain.Shopping, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	shopping, err := s.GetShopping(ctx, shoppingID)
	if err != nil {
		return nil, err
	}

	shopping.Title = input.Title
	if !input.Planning.IsZero() {
		shopping.Planning = input.Planning
	}
	shopping.Touch()

	if err := s.store.UpdateShopping(ctx, shopping); err != nil {
		return nil, fmt.Errorf("update shopping: %w", err)
	}
	return shopping, nil
}

// DeleteShopping removes a list and, by cascade, all of its items. Sessions
// that had the list open get their selection cleared by the store.
func (s *ShoppingService) DeleteShopping(ctx context.Context, shoppingID string) error {
	if err := s.store.DeleteShopping(ctx, shoppingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("shopping list not found")
		}
		return fmt.Errorf("delete shopping: %w", err)
	}

	s.logger.Info("shopping list deleted", "shopping_id", shoppingID)
	return nil
}

// ListItems returns the list's lines with each product's full catalog
// ancestry resolved, ordered by product title.
func (s *ShoppingService) ListItems(ctx context.Context, shoppingID string) ([]*store.ShoppingItemDetail, error) {
	if _, err := s.GetShopping(ctx, shoppingID); err != nil {
		return nil, err
	}
	return s.store.ListShoppingItemDetails(ctx, shoppingID)
}

// --- Item mutations ---

// ItemResult reports the outcome of an item mutation: which operation
// actually happened, the affected item (a snapshot for deletions, nil for
// rejected no-ops), and the list's done flag after re-derivation.
type ItemResult struct {
	Operation   domain.ItemOperation `json:"operation"`
	Item        *domain.ShoppingItem `json:"item,omitempty"`
	ListDone    bool                 `json:"list_done"`
	DoneChanged bool                 `json:"done_changed"`
}

// AddOrEditItem adds a product to the selected list or updates its quantity.
//
//   - quantity < 1 is a semantically void request: nothing is mutated and
//     the result is tagged "rejected". A sub-1 quantity never deletes;
//     only DeleteItem removes lines.
//   - product absent: a new unchecked line is created ("addition").
//   - product present: the quantity is replaced in place ("edition"); the
//     line's done flag is untouched and the list is not re-derived.
func (s *ShoppingService) AddOrEditItem(ctx context.Context, sessionID, shoppingID, productID string, quantity int) (*ItemResult, error) {
	shopping, err := s.requireSelected(ctx, sessionID, shoppingID)
	if err != nil {
		return nil, err
	}

	if quantity < 1 {
		return &ItemResult{Operation: domain.ItemOperationRejected, ListDone: shopping.Done}, nil
	}

	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	existing, err := s.store.GetShoppingItem(ctx, shoppingID, productID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if existing != nil {
		updated, err := s.store.UpdateShoppingItemQuantity(ctx, shoppingID, productID, quantity)
		if err != nil {
			return nil, fmt.Errorf("update item quantity: %w", err)
		}
		s.logger.Info("shopping item edited",
			"shopping_id", shoppingID,
			"product_id", productID,
			"quantity", quantity,
		)
		return &ItemResult{
			Operation: domain.ItemOperationEdition,
			Item:      updated,
			ListDone:  shopping.Done,
		}, nil
	}

	item := &domain.ShoppingItem{
		ID:         id.MustGenerate("item"),
		ShoppingID: shoppingID,
		ProductID:  productID,
		Quantity:   quantity,
		Done:       false,
		CreatedAt:  time.Now(),
	}
	res, err := s.store.CreateShoppingItem(ctx, item)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("product was just added to this list")
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Info("shopping item added",
		"shopping_id", shoppingID,
		"product_id", productID,
		"quantity", quantity,
	)
	return &ItemResult{
		Operation:   domain.ItemOperationAddition,
		Item:        res.Item,
		ListDone:    res.Done,
		DoneChanged: res.DoneChanged,
	}, nil
}

// DeleteItem removes a product's line from the selected list. The deleted
// line is returned as a snapshot. Removing the last unchecked item of a
// still-populated list completes it via the same-transaction re-derivation.
func (s *ShoppingService) DeleteItem(ctx context.Context, sessionID, shoppingID, productID string) (*ItemResult, error) {
	if _, err := s.requireSelected(ctx, sessionID, shoppingID); err != nil {
		return nil, err
	}

	res, err := s.store.DeleteShoppingItem(ctx, shoppingID, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("item not found")
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}

	s.logger.Info("shopping item deleted",
		"shopping_id", shoppingID,
		"product_id", productID,
	)
	return &ItemResult{
		Operation:   domain.ItemOperationDeletion,
		Item:        res.Item,
		ListDone:    res.Done,
		DoneChanged: res.DoneChanged,
	}, nil
}

// ToggleItemDone sets the line's done flag and re-derives the list's done
// flag in the same transaction.
func (s *ShoppingService) ToggleItemDone(ctx context.Context, sessionID, shoppingID, productID string, done bool) (*ItemResult, error) {
	if _, err := s.requireSelected(ctx, sessionID, shoppingID); err != nil {
		return nil, err
	}

	res, err := s.store.SetShoppingItemDone(ctx, shoppingID, productID, done)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("item not found")
		}
		return nil, fmt.Errorf("toggle item: %w", err)
	}

	s.logger.Info("shopping item toggled",
		"shopping_id", shoppingID,
		"product_id", productID,
		"done", done,
	)
	return &ItemResult{
		Operation:   domain.ItemOperationToggle,
		Item:        res.Item,
		ListDone:    res.Done,
		DoneChanged: res.DoneChanged,
	}, nil
}

// requireSelected verifies the target list is the session's currently
// selected one and returns it. A mismatch or missing selection reads as
// not-found, never as a hint that the list exists.
func (s *ShoppingService) requireSelected(ctx context.Context, sessionID, shoppingID string) (*domain.Shopping, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("session not found")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.SelectedShoppingID != shoppingID {
		return nil, domainerrors.NotFound("shopping list not found")
	}

	return s.GetShopping(ctx, shoppingID)
}

// --- Selection ---

// OpenSelection marks a shopping list as the session's opened list,
// unconditionally overwriting any previous selection (last writer wins).
// The optional next path is validated as a same-origin relative location
// and returned normalized; an empty next yields an empty string.
func (s *ShoppingService) OpenSelection(ctx context.Context, sessionID, shoppingID, next string) (string, error) {
	if _, err := s.GetShopping(ctx, shoppingID); err != nil {
		return "", err
	}

	redirect, err := validateNextPath(next)
	if err != nil {
		return "", err
	}

	if err := s.store.SetSessionSelection(ctx, sessionID, shoppingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.Unauthorized("session not found")
		}
		return "", fmt.Errorf("set selection: %w", err)
	}

	s.logger.Info("shopping list opened", "session_id", sessionID, "shopping_id", shoppingID)
	return redirect, nil
}

// CloseSelection clears the session's opened list. Closing with no list
// open is a no-op.
func (s *ShoppingService) CloseSelection(ctx context.Context, sessionID string) error {
	if err := s.store.SetSessionSelection(ctx, sessionID, ""); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.Unauthorized("session not found")
		}
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// ResolveSelection resolves the session's opened list into an inventory
// projection: the list plus its items loaded once, indexed by product.
// Returns nil with no error when nothing is selected. A selection pointing
// at a deleted list is cleared silently and resolves to no selection.
func (s *ShoppingService) ResolveSelection(ctx context.Context, sessionID string) (*domain.Inventory, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("session not found")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.HasSelection() {
		return nil, nil
	}

	shopping, err := s.store.GetShopping(ctx, session.SelectedShoppingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Stale selection: the list is gone. Self-heal and report
			// no selection instead of failing the request.
			if clearErr := s.store.SetSessionSelection(ctx, sessionID, ""); clearErr != nil {
				s.logger.Warn("failed to clear stale selection",
					"session_id", sessionID,
					"error", clearErr,
				)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("get shopping: %w", err)
	}

	items, err := s.store.ListShoppingItems(ctx, shopping.ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return domain.NewInventory(*shopping, items), nil
}

// validateNextPath accepts only same-origin relative paths for post-open
// redirects. Absolute URLs, scheme-relative URLs, and paths smuggling a
// host are rejected so an open link can never bounce the client off-site.
func validateNextPath(next string) (string, error) {
	if next == "" {
		return "", nil
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", domainerrors.Validation("next must be a same-origin relative path")
	}

	u, err := url.Parse(next)
	if err != nil {
		return "", domainerrors.Validation("next is not a valid path")
	}
	if u.Scheme != "" || u.Host != "" {
		return "", domainerrors.Validation("next must be a same-origin relative path")
	}

	return u.String(), nil
}
