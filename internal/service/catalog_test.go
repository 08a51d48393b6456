package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/atoumapp/atoum-server/internal/errors"
	"github.com/atoumapp/atoum-server/internal/search"
	"github.com/atoumapp/atoum-server/internal/store/sqlite"
	"github.com/atoumapp/atoum-server/internal/validation"
)

// setupCatalogTest wires a catalog service to a temporary store and a real
// search index, so index hooks are exercised alongside the CRUD paths.
func setupCatalogTest(t *testing.T) (*CatalogService, *SearchService) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{
		DataPath: tmpDir,
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchService := NewSearchService(index, s, testLogger())
	return NewCatalogService(s, searchService, validation.New(), testLogger()), searchService
}

// seedBranch creates Food → Fresh products → Cheese and returns their ids.
func seedBranch(t *testing.T, svc *CatalogService) (consumableID, assortmentID, categoryID string) {
	t.Helper()
	ctx := context.Background()

	consumable, err := svc.CreateConsumable(ctx, CreateConsumableInput{Title: "Food"})
	require.NoError(t, err)
	assortment, err := svc.CreateAssortment(ctx, CreateAssortmentInput{
		ConsumableID: consumable.ID, Title: "Fresh products",
	})
	require.NoError(t, err)
	category, err := svc.CreateCategory(ctx, CreateCategoryInput{
		AssortmentID: assortment.ID, Title: "Cheese",
	})
	require.NoError(t, err)

	return consumable.ID, assortment.ID, category.ID
}

func TestCatalogService_CreateConsumable(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	c, err := svc.CreateConsumable(ctx, CreateConsumableInput{Title: "Fruits & Nuts"})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Fruits & Nuts", c.Title)
	assert.Equal(t, "fruits-nuts", c.Slug)
}

func TestCatalogService_CreateConsumable_Duplicate(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.CreateConsumable(ctx, CreateConsumableInput{Title: "Food"})
	require.NoError(t, err)

	_, err = svc.CreateConsumable(ctx, CreateConsumableInput{Title: "Food"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestCatalogService_CreateConsumable_Invalid(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	_, err := svc.CreateConsumable(context.Background(), CreateConsumableInput{Title: ""})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalogService_CreateAssortment_UnknownParent(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	_, err := svc.CreateAssortment(context.Background(), CreateAssortmentInput{
		ConsumableID: "con-missing", Title: "Fresh products",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_CategoryUniquePerAssortment(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	consumableID, assortmentID, _ := seedBranch(t, svc)

	// Same title in the same assortment conflicts.
	_, err := svc.CreateCategory(ctx, CreateCategoryInput{
		AssortmentID: assortmentID, Title: "Cheese",
	})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	// Same title under another assortment is fine.
	other, err := svc.CreateAssortment(ctx, CreateAssortmentInput{
		ConsumableID: consumableID, Title: "Frozen",
	})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CreateCategoryInput{
		AssortmentID: other.ID, Title: "Cheese",
	})
	assert.NoError(t, err)
}

func TestCatalogService_ProductLifecycle(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, _, categoryID := seedBranch(t, svc)
	brand, err := svc.CreateBrand(ctx, CreateBrandInput{Title: "Juhlin"})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, CreateProductInput{
		CategoryID: categoryID,
		BrandID:    brand.ID,
		Title:      "Comte",
	})
	require.NoError(t, err)
	assert.Equal(t, "comte", p.Slug)

	h, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food / Fresh products / Cheese / Comte", h.Path())
	require.NotNil(t, h.Brand)
	assert.Equal(t, "Juhlin", h.Brand.Title)

	updated, err := svc.UpdateProduct(ctx, p.ID, CreateProductInput{
		CategoryID: categoryID,
		Title:      "Comte 18 months",
	})
	require.NoError(t, err)
	assert.Equal(t, "comte-18-months", updated.Slug)
	assert.Empty(t, updated.BrandID)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_MutationsFeedSearch(t *testing.T) {
	svc, searchService := setupCatalogTest(t)
	ctx := context.Background()

	_, _, categoryID := seedBranch(t, svc)
	p, err := svc.CreateProduct(ctx, CreateProductInput{
		CategoryID: categoryID, Title: "Roquefort",
	})
	require.NoError(t, err)

	result, err := searchService.Search(ctx, search.SearchParams{Query: "Roquefort", Limit: 10})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.Equal(t, p.ID, result.Hits[0].ID)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	result, err = searchService.Search(ctx, search.SearchParams{Query: "Roquefort", Limit: 10})
	require.NoError(t, err)
	for _, hit := range result.Hits {
		assert.NotEqual(t, p.ID, hit.ID)
	}
}

func TestCatalogService_Tree(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	consumableID, assortmentID, categoryID := seedBranch(t, svc)
	_, err := svc.CreateProduct(ctx, CreateProductInput{CategoryID: categoryID, Title: "Comte"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{CategoryID: categoryID, Title: "Brie"})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	root := tree[0]
	assert.Equal(t, consumableID, root.ID)
	require.Len(t, root.Assortments, 1)
	assert.Equal(t, assortmentID, root.Assortments[0].ID)
	require.Len(t, root.Assortments[0].Categories, 1)

	leaf := root.Assortments[0].Categories[0]
	assert.Equal(t, categoryID, leaf.ID)
	require.Len(t, leaf.Products, 2)
	// Products come back ordered by title.
	assert.Equal(t, "Brie", leaf.Products[0].Title)
	assert.Equal(t, "Comte", leaf.Products[1].Title)
}

func TestSearchService_ReindexAll(t *testing.T) {
	svc, searchService := setupCatalogTest(t)
	ctx := context.Background()

	_, _, categoryID := seedBranch(t, svc)
	brand, err := svc.CreateBrand(ctx, CreateBrandInput{Title: "Juhlin"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{
		CategoryID: categoryID, BrandID: brand.ID, Title: "Comte",
	})
	require.NoError(t, err)

	require.NoError(t, searchService.ReindexAll(ctx))

	// 1 consumable + 1 assortment + 1 category + 1 brand + 1 product.
	count, err := searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	// Ancestry is denormalized during the rebuild: searching the category
	// title surfaces the product.
	result, err := searchService.Search(ctx, search.SearchParams{
		Query: "cheese",
		Types: []string{string(search.DocTypeProduct)},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, search.DocTypeProduct, result.Hits[0].Type)
}

func TestSearchService_EnsureIndexed(t *testing.T) {
	svc, searchService := setupCatalogTest(t)
	ctx := context.Background()

	_, _, categoryID := seedBranch(t, svc)
	_, err := svc.CreateProduct(ctx, CreateProductInput{CategoryID: categoryID, Title: "Comte"})
	require.NoError(t, err)

	// Index already has documents: EnsureIndexed leaves it alone.
	before, err := searchService.DocumentCount()
	require.NoError(t, err)
	require.NoError(t, searchService.EnsureIndexed(ctx))
	after, err := searchService.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
