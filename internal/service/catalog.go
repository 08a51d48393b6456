package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atoumapp/atoum-server/internal/domain"
	domainerrors "github.com/atoumapp/atoum-server/internal/errors"
	"github.com/atoumapp/atoum-server/internal/id"
	"github.com/atoumapp/atoum-server/internal/store"
	"github.com/atoumapp/atoum-server/internal/util"
	"github.com/atoumapp/atoum-server/internal/validation"
)

// CatalogService manages the four-level catalog hierarchy and brands.
// Slugs are derived from titles on every create and title change; uniqueness
// violations surface as conflict errors. Mutations keep the search index in
// sync, best effort.
type CatalogService struct {
	store     store.Store
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, search *SearchService, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		search:    search,
		validator: validator,
		logger:    logger,
	}
}

// --- Consumables ---

// CreateConsumableInput contains the fields for a new consumable.
type CreateConsumableInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// CreateConsumable creates a root-level catalog entry.
func (s *CatalogService) CreateConsumable(ctx context.Context, input CreateConsumableInput) (*domain.Consumable, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &domain.Consumable{
		ID:        id.MustGenerate("con"),
		Title:     input.Title,
		Slug:      util.Slugify(input.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateConsumable(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("consumable %q already exists", input.Title)
		}
		return nil, fmt.Errorf("create consumable: %w", err)
	}

	s.reindex(func() error { return s.search.IndexConsumable(c) })
	s.logger.Info("consumable created", "id", c.ID, "title", c.Title)
	return c, nil
}

// GetConsumable returns a consumable by id.
func (s *CatalogService) GetConsumable(ctx context.Context, consumableID string) (*domain.Consumable, error) {
	c, err := s.store.GetConsumable(ctx, consumableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("consumable not found")
		}
		return nil, fmt.Errorf("get consumable: %w", err)
	}
	return c, nil
}

// ListConsumables returns all consumables ordered by title.
func (s *CatalogService) ListConsumables(ctx context.Context) ([]*domain.Consumable, error) {
	return s.store.ListConsumables(ctx)
}

// UpdateConsumable renames a consumable, re-deriving its slug.
func (s *CatalogService) UpdateConsumable(ctx context.Context, consumableID string, input CreateConsumableInput) (*domain.Consumable, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	c, err := s.GetConsumable(ctx, consumableID)
	if err != nil {
		return nil, err
	}

	c.Title = input.Title
	c.Slug = util.Slugify(input.Title)
	c.Touch()

	if err := s.store.UpdateConsumable(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("consumable %q already exists", input.Title)
		}
		return nil, fmt.Errorf("update consumable: %w", err)
	}

	s.reindex(func() error { return s.search.IndexConsumable(c) })
	return c, nil
}

// DeleteConsumable removes a consumable and, by cascade, everything under it.
func (s *CatalogService) DeleteConsumable(ctx context.Context, consumableID string) error {
	if err := s.store.DeleteConsumable(ctx, consumableID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("consumable not found")
		}
		return fmt.Errorf("delete consumable: %w", err)
	}

	// The cascade invalidates an unknown set of descendant documents.
	s.reindexAll(ctx)
	s.logger.Info("consumable deleted", "id", consumableID)
	return nil
}

// --- Assortments ---

// CreateAssortmentInput contains the fields for a new assortment.
type CreateAssortmentInput struct {
	ConsumableID string `json:"consumable_id" validate:"required"`
	Title        string `json:"title" validate:"required,min=1,max=100"`
}

// CreateAssortment creates a second-level catalog entry under a consumable.
func (s *CatalogService) CreateAssortment(ctx context.Context, input CreateAssortmentInput) (*domain.Assortment, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if _, err := s.GetConsumable(ctx, input.ConsumableID); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &domain.Assortment{
		ID:           id.MustGenerate("ast"),
		ConsumableID: input.ConsumableID,
		Title:        input.Title,
		Slug:         util.Slugify(input.Title),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAssortment(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("assortment %q already exists", input.Title)
		}
		return nil, fmt.Errorf("create assortment: %w", err)
	}

	s.reindex(func() error { return s.search.IndexAssortment(ctx, a) })
	s.logger.Info("assortment created", "id", a.ID, "title", a.Title)
	return a, nil
}

// GetAssortment returns an assortment by id.
func (s *CatalogService) GetAssortment(ctx context.Context, assortmentID string) (*domain.Assortment, error) {
	a, err := s.store.GetAssortment(ctx, assortmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("assortment not found")
		}
		return nil, fmt.Errorf("get assortment: %w", err)
	}
	return a, nil
}

// ListAssortments returns assortments, optionally filtered by consumable.
func (s *CatalogService) ListAssortments(ctx context.Context, consumableID string) ([]*domain.Assortment, error) {
	if consumableID != "" {
		return s.store.ListAssortmentsByConsumable(ctx, consumableID)
	}
	return s.store.ListAssortments(ctx)
}

// UpdateAssortmentInput contains the updatable fields of an assortment.
type UpdateAssortmentInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// UpdateAssortment renames an assortment, re-deriving its slug.
func (s *CatalogService) UpdateAssortment(ctx context.Context, assortmentID string, input UpdateAssortmentInput) (*domain.Assortment, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	a, err := s.GetAssortment(ctx, assortmentID)
	if err != nil {
		return nil, err
	}

	a.Title = input.Title
	a.Slug = util.Slugify(input.Title)
	a.Touch()

	if err := s.store.UpdateAssortment(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("assortment %q already exists", input.Title)
		}
		return nil, fmt.Errorf("update assortment: %w", err)
	}

	s.reindex(func() error { return s.search.IndexAssortment(ctx, a) })
	return a, nil
}

// DeleteAssortment removes an assortment and its descendants.
func (s *CatalogService) DeleteAssortment(ctx context.Context, assortmentID string) error {
	if err := s.store.DeleteAssortment(ctx, assortmentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("assortment not found")
		}
		return fmt.Errorf("delete assortment: %w", err)
	}

	s.reindexAll(ctx)
	s.logger.Info("assortment deleted", "id", assortmentID)
	return nil
}

// --- Categories ---

// CreateCategoryInput contains the fields for a new category.
type CreateCategoryInput struct {
	AssortmentID string `json:"assortment_id" validate:"required"`
	Title        string `json:"title" validate:"required,min=1,max=100"`
}

// CreateCategory creates a third-level catalog entry under an assortment.
// Titles and slugs are unique within the assortment, not globally.
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if _, err := s.GetAssortment(ctx, input.AssortmentID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &domain.Category{
		ID:           id.MustGenerate("cat"),
		AssortmentID: input.AssortmentID,
		Title:        input.Title,
		Slug:         util.Slugify(input.Title),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("category %q already exists in this assortment", input.Title)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.reindex(func() error { return s.search.IndexCategory(ctx, c) })
	s.logger.Info("category created", "id", c.ID, "title", c.Title)
	return c, nil
}

// GetCategory returns a category by id.
func (s *CatalogService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns categories, optionally filtered by assortment.
func (s *CatalogService) ListCategories(ctx context.Context, assortmentID string) ([]*domain.Category, error) {
	if assortmentID != "" {
		return s.store.ListCategoriesByAssortment(ctx, assortmentID)
	}
	return s.store.ListCategories(ctx)
}

// UpdateCategoryInput contains the updatable fields of a category.
type UpdateCategoryInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// UpdateCategory renames a category, re-deriving its slug.
func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, input UpdateCategoryInput) (*domain.Category, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	c, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	c.Title = input.Title
	c.Slug = util.Slugify(input.Title)
	c.Touch()

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("category %q already exists in this assortment", input.Title)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.reindex(func() error { return s.search.IndexCategory(ctx, c) })
	return c, nil
}

// DeleteCategory removes a category and its products.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}

	s.reindexAll(ctx)
	s.logger.Info("category deleted", "id", categoryID)
	return nil
}

// --- Brands ---

// CreateBrandInput contains the fields for a new brand.
type CreateBrandInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
	Cover string `json:"cover,omitempty" validate:"omitempty,max=500"`
}

// CreateBrand creates a brand.
func (s *CatalogService) CreateBrand(ctx context.Context, input CreateBrandInput) (*domain.Brand, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &domain.Brand{
		ID:        id.MustGenerate("brd"),
		Title:     input.Title,
		Slug:      util.Slugify(input.Title),
		Cover:     input.Cover,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateBrand(ctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("brand %q already exists", input.Title)
		}
		return nil, fmt.Errorf("create brand: %w", err)
	}

	s.reindex(func() error { return s.search.IndexBrand(b) })
	s.logger.Info("brand created", "id", b.ID, "title", b.Title)
	return b, nil
}

// GetBrand returns a brand by id.
func (s *CatalogService) GetBrand(ctx context.Context, brandID string) (*domain.Brand, error) {
	b, err := s.store.GetBrand(ctx, brandID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("brand not found")
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

// ListBrands returns all brands ordered by title.
func (s *CatalogService) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	return s.store.ListBrands(ctx)
}

// UpdateBrand renames a brand or replaces its cover.
func (s *CatalogService) UpdateBrand(ctx context.Context, brandID string, input CreateBrandInput) (*domain.Brand, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	b, err := s.GetBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}

	b.Title = input.Title
	b.Slug = util.Slugify(input.Title)
	b.Cover = input.Cover
	b.Touch()

	if err := s.store.UpdateBrand(ctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("brand %q already exists", input.Title)
		}
		return nil, fmt.Errorf("update brand: %w", err)
	}

	s.reindex(func() error { return s.search.IndexBrand(b) })
	return b, nil
}

// DeleteBrand removes a brand. Products referencing it keep existing with
// their brand reference cleared, so their documents go stale too.
func (s *CatalogService) DeleteBrand(ctx context.Context, brandID string) error {
	if err := s.store.DeleteBrand(ctx, brandID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("brand not found")
		}
		return fmt.Errorf("delete brand: %w", err)
	}

	s.reindexAll(ctx)
	s.logger.Info("brand deleted", "id", brandID)
	return nil
}

// --- Products ---

// CreateProductInput contains the fields for a new product.
type CreateProductInput struct {
	CategoryID  string `json:"category_id" validate:"required"`
	BrandID     string `json:"brand_id,omitempty"`
	Title       string `json:"title" validate:"required,min=1,max=150"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Cover       string `json:"cover,omitempty" validate:"omitempty,max=500"`
}

// CreateProduct creates a leaf catalog entry under a category.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if _, err := s.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if input.BrandID != "" {
		if _, err := s.GetBrand(ctx, input.BrandID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	p := &domain.Product{
		ID:          id.MustGenerate("prd"),
		CategoryID:  input.CategoryID,
		BrandID:     input.BrandID,
		Title:       input.Title,
		Slug:        util.Slugify(input.Title),
		Description: input.Description,
		Cover:       input.Cover,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("product %q already exists", input.Title)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.reindex(func() error { return s.search.IndexProduct(ctx, p.ID) })
	s.logger.Info("product created", "id", p.ID, "title", p.Title)
	return p, nil
}

// GetProduct returns a product with its full ancestry resolved.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.ProductHierarchy, error) {
	h, err := s.store.GetProductHierarchy(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return h, nil
}

// ListProducts returns a page of products ordered by title.
func (s *CatalogService) ListProducts(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Product], error) {
	params.Validate()
	return s.store.ListProducts(ctx, params)
}

// ListProductsByCategory returns all products in a category ordered by title.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.store.ListProductsByCategory(ctx, categoryID)
}

// UpdateProduct replaces a product's editable fields, re-deriving its slug.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, input CreateProductInput) (*domain.Product, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if input.CategoryID != p.CategoryID {
		if _, err := s.GetCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.BrandID != "" && input.BrandID != p.BrandID {
		if _, err := s.GetBrand(ctx, input.BrandID); err != nil {
			return nil, err
		}
	}

	p.CategoryID = input.CategoryID
	p.BrandID = input.BrandID
	p.Title = input.Title
	p.Slug = util.Slugify(input.Title)
	p.Description = input.Description
	p.Cover = input.Cover
	p.Touch()

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("product %q already exists", input.Title)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.reindex(func() error { return s.search.IndexProduct(ctx, p.ID) })
	return p, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.reindex(func() error { return s.search.RemoveDocument(productID) })
	s.logger.Info("product deleted", "id", productID)
	return nil
}

// --- Tree ---

// TreeConsumable is one root of the resolved catalog tree.
type TreeConsumable struct {
	domain.Consumable
	Assortments []*TreeAssortment `json:"assortments"`
}

// TreeAssortment is a second-level node of the resolved catalog tree.
type TreeAssortment struct {
	domain.Assortment
	Categories []*TreeCategory `json:"categories"`
}

// TreeCategory is a third-level node holding its products.
type TreeCategory struct {
	domain.Category
	Products []*domain.Product `json:"products"`
}

// Tree resolves the full catalog hierarchy with one query per level and
// in-memory grouping, so the cost stays flat regardless of tree depth.
func (s *CatalogService) Tree(ctx context.Context) ([]*TreeConsumable, error) {
	consumables, err := s.store.ListConsumables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list consumables: %w", err)
	}
	assortments, err := s.store.ListAssortments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assortments: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.store.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	categoryNodes := make(map[string]*TreeCategory, len(categories))
	assortmentNodes := make(map[string]*TreeAssortment, len(assortments))

	tree := make([]*TreeConsumable, 0, len(consumables))
	consumableNodes := make(map[string]*TreeConsumable, len(consumables))
	for _, c := range consumables {
		node := &TreeConsumable{Consumable: *c, Assortments: []*TreeAssortment{}}
		consumableNodes[c.ID] = node
		tree = append(tree, node)
	}
	for _, a := range assortments {
		parent, ok := consumableNodes[a.ConsumableID]
		if !ok {
			continue
		}
		node := &TreeAssortment{Assortment: *a, Categories: []*TreeCategory{}}
		assortmentNodes[a.ID] = node
		parent.Assortments = append(parent.Assortments, node)
	}
	for _, c := range categories {
		parent, ok := assortmentNodes[c.AssortmentID]
		if !ok {
			continue
		}
		node := &TreeCategory{Category: *c, Products: []*domain.Product{}}
		categoryNodes[c.ID] = node
		parent.Categories = append(parent.Categories, node)
	}
	for _, p := range products {
		parent, ok := categoryNodes[p.CategoryID]
		if !ok {
			continue
		}
		parent.Products = append(parent.Products, p)
	}

	return tree, nil
}

// reindex runs a single-document index update, best effort. Search staying
// momentarily stale must never fail a catalog write.
func (s *CatalogService) reindex(fn func() error) {
	if s.search == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("search index update failed", "error", err)
	}
}

// reindexAll rebuilds the whole index after a cascading delete, best effort.
func (s *CatalogService) reindexAll(ctx context.Context) {
	if s.search == nil {
		return
	}
	if err := s.search.ReindexAll(ctx); err != nil {
		s.logger.Warn("search reindex failed", "error", err)
	}
}
