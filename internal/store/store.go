// Package store defines the persistence interface for the Atoum server.
package store

import (
	"context"

	"github.com/atoumapp/atoum-server/internal/domain"
)

// ShoppingItemDetail is a shopping line resolved with its product's full
// catalog ancestry, loaded in one query so list rendering never goes back
// to the database per item.
type ShoppingItemDetail struct {
	Item    domain.ShoppingItem     `json:"item"`
	Product domain.ProductHierarchy `json:"product"`
}

// ItemMutationResult reports the outcome of a transactional shopping item
// mutation: the affected item (a snapshot for deletions) and whether the
// owning list's done flag changed as part of the same transaction.
type ItemMutationResult struct {
	Item        *domain.ShoppingItem
	DoneChanged bool
	Done        bool // Current value of the list's done flag after the mutation
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
	// SetSessionSelection stores the session's opened shopping list id.
	// An empty shoppingID clears the selection.
	SetSessionSelection(ctx context.Context, sessionID, shoppingID string) error

	// Consumables
	CreateConsumable(ctx context.Context, c *domain.Consumable) error
	GetConsumable(ctx context.Context, id string) (*domain.Consumable, error)
	GetConsumableBySlug(ctx context.Context, slug string) (*domain.Consumable, error)
	UpdateConsumable(ctx context.Context, c *domain.Consumable) error
	DeleteConsumable(ctx context.Context, id string) error
	ListConsumables(ctx context.Context) ([]*domain.Consumable, error)

	// Assortments
	CreateAssortment(ctx context.Context, a *domain.Assortment) error
	GetAssortment(ctx context.Context, id string) (*domain.Assortment, error)
	GetAssortmentBySlug(ctx context.Context, slug string) (*domain.Assortment, error)
	UpdateAssortment(ctx context.Context, a *domain.Assortment) error
	DeleteAssortment(ctx context.Context, id string) error
	ListAssortments(ctx context.Context) ([]*domain.Assortment, error)
	ListAssortmentsByConsumable(ctx context.Context, consumableID string) ([]*domain.Assortment, error)

	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, assortmentID, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListCategoriesByAssortment(ctx context.Context, assortmentID string) ([]*domain.Category, error)

	// Brands
	CreateBrand(ctx context.Context, b *domain.Brand) error
	GetBrand(ctx context.Context, id string) (*domain.Brand, error)
	GetBrandBySlug(ctx context.Context, slug string) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, b *domain.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	ListBrands(ctx context.Context) ([]*domain.Brand, error)

	// Products
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductHierarchy(ctx context.Context, id string) (*domain.ProductHierarchy, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Product], error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	ListAllProducts(ctx context.Context) ([]*domain.Product, error)

	// Shoppings
	CreateShopping(ctx context.Context, s *domain.Shopping) error
	GetShopping(ctx context.Context, id string) (*domain.Shopping, error)
	UpdateShopping(ctx context.Context, s *domain.Shopping) error
	DeleteShopping(ctx context.Context, id string) error
	ListShoppings(ctx context.Context) ([]*domain.Shopping, error)

	// Shopping items. Mutations that can change an item's done state or
	// existence run the list's done re-derivation inside the same
	// transaction; plain quantity edits do not.
	GetShoppingItem(ctx context.Context, shoppingID, productID string) (*domain.ShoppingItem, error)
	ListShoppingItems(ctx context.Context, shoppingID string) ([]domain.ShoppingItem, error)
	ListShoppingItemDetails(ctx context.Context, shoppingID string) ([]*ShoppingItemDetail, error)
	CreateShoppingItem(ctx context.Context, item *domain.ShoppingItem) (*ItemMutationResult, error)
	UpdateShoppingItemQuantity(ctx context.Context, shoppingID, productID string, quantity int) (*domain.ShoppingItem, error)
	DeleteShoppingItem(ctx context.Context, shoppingID, productID string) (*ItemMutationResult, error)
	SetShoppingItemDone(ctx context.Context, shoppingID, productID string, done bool) (*ItemMutationResult, error)
}
