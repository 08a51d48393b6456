// Package service orchestrates domain logic between the store, the search
// index, and the API layer.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/search"
	"github.com/atoumapp/atoum-server/internal/store"
)

// SearchService provides search functionality across the catalog.
// It bridges the search index with the data store, handling document
// creation, updates, and query execution.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search performs a federated search across all catalog entity types.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexConsumable indexes a single consumable.
// Call this when a consumable is created or updated.
func (s *SearchService) IndexConsumable(c *domain.Consumable) error {
	if err := s.index.IndexDocument(search.ConsumableToSearchDocument(c)); err != nil {
		return fmt.Errorf("index consumable: %w", err)
	}
	s.logger.Debug("indexed consumable", "id", c.ID, "title", c.Title)
	return nil
}

// IndexAssortment indexes a single assortment with its parent resolved.
func (s *SearchService) IndexAssortment(ctx context.Context, a *domain.Assortment) error {
	consumable, err := s.store.GetConsumable(ctx, a.ConsumableID)
	if err != nil {
		return fmt.Errorf("resolve consumable: %w", err)
	}

	if err := s.index.IndexDocument(search.AssortmentToSearchDocument(a, consumable)); err != nil {
		return fmt.Errorf("index assortment: %w", err)
	}
	s.logger.Debug("indexed assortment", "id", a.ID, "title", a.Title)
	return nil
}

// IndexCategory indexes a single category with its ancestry resolved.
func (s *SearchService) IndexCategory(ctx context.Context, c *domain.Category) error {
	assortment, err := s.store.GetAssortment(ctx, c.AssortmentID)
	if err != nil {
		return fmt.Errorf("resolve assortment: %w", err)
	}
	consumable, err := s.store.GetConsumable(ctx, assortment.ConsumableID)
	if err != nil {
		return fmt.Errorf("resolve consumable: %w", err)
	}

	if err := s.index.IndexDocument(search.CategoryToSearchDocument(c, assortment, consumable)); err != nil {
		return fmt.Errorf("index category: %w", err)
	}
	s.logger.Debug("indexed category", "id", c.ID, "title", c.Title)
	return nil
}

// IndexBrand indexes a single brand.
func (s *SearchService) IndexBrand(b *domain.Brand) error {
	if err := s.index.IndexDocument(search.BrandToSearchDocument(b)); err != nil {
		return fmt.Errorf("index brand: %w", err)
	}
	s.logger.Debug("indexed brand", "id", b.ID, "title", b.Title)
	return nil
}

// IndexProduct indexes a single product with its full ancestry resolved.
func (s *SearchService) IndexProduct(ctx context.Context, productID string) error {
	hierarchy, err := s.store.GetProductHierarchy(ctx, productID)
	if err != nil {
		return fmt.Errorf("resolve product hierarchy: %w", err)
	}

	if err := s.index.IndexDocument(search.ProductToSearchDocument(hierarchy)); err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	s.logger.Debug("indexed product", "id", productID, "title", hierarchy.Product.Title)
	return nil
}

// RemoveDocument removes a single entity from the index.
func (s *SearchService) RemoveDocument(id string) error {
	return s.index.DeleteDocument(id)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// EnsureIndexed reindexes the whole catalog when the index is empty,
// e.g. after a mapping-version rebuild on startup.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.ReindexAll(ctx)
}

// ReindexAll drops the index and rebuilds every document from the store,
// so documents for cascade-deleted entities do not linger. The catalog is
// loaded with one query per entity type; ancestry is resolved in memory,
// never per document.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	consumables, err := s.store.ListConsumables(ctx)
	if err != nil {
		return fmt.Errorf("list consumables: %w", err)
	}
	assortments, err := s.store.ListAssortments(ctx)
	if err != nil {
		return fmt.Errorf("list assortments: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("list brands: %w", err)
	}
	products, err := s.store.ListAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	consumableByID := make(map[string]*domain.Consumable, len(consumables))
	for _, c := range consumables {
		consumableByID[c.ID] = c
	}
	assortmentByID := make(map[string]*domain.Assortment, len(assortments))
	for _, a := range assortments {
		assortmentByID[a.ID] = a
	}
	categoryByID := make(map[string]*domain.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}
	brandByID := make(map[string]*domain.Brand, len(brands))
	for _, b := range brands {
		brandByID[b.ID] = b
	}

	docs := make([]*search.SearchDocument, 0,
		len(consumables)+len(assortments)+len(categories)+len(brands)+len(products))

	for _, c := range consumables {
		docs = append(docs, search.ConsumableToSearchDocument(c))
	}
	for _, a := range assortments {
		parent, ok := consumableByID[a.ConsumableID]
		if !ok {
			continue
		}
		docs = append(docs, search.AssortmentToSearchDocument(a, parent))
	}
	for _, c := range categories {
		assortment, ok := assortmentByID[c.AssortmentID]
		if !ok {
			continue
		}
		consumable, ok := consumableByID[assortment.ConsumableID]
		if !ok {
			continue
		}
		docs = append(docs, search.CategoryToSearchDocument(c, assortment, consumable))
	}
	for _, b := range brands {
		docs = append(docs, search.BrandToSearchDocument(b))
	}
	for _, p := range products {
		category, ok := categoryByID[p.CategoryID]
		if !ok {
			continue
		}
		assortment, ok := assortmentByID[category.AssortmentID]
		if !ok {
			continue
		}
		consumable, ok := consumableByID[assortment.ConsumableID]
		if !ok {
			continue
		}
		h := &domain.ProductHierarchy{
			Product:    *p,
			Category:   *category,
			Assortment: *assortment,
			Consumable: *consumable,
		}
		if p.BrandID != "" {
			h.Brand = brandByID[p.BrandID]
		}
		docs = append(docs, search.ProductToSearchDocument(h))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("reindexed catalog", "documents", len(docs))
	return nil
}
