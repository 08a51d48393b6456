package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/id"
	"github.com/atoumapp/atoum-server/internal/store"
)

func TestCreateAndGetConsumable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	c := &domain.Consumable{
		ID: "con-1", Title: "Food", Slug: "food",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateConsumable(ctx, c); err != nil {
		t.Fatalf("CreateConsumable: %v", err)
	}

	got, err := s.GetConsumable(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetConsumable: %v", err)
	}
	if got.Title != "Food" {
		t.Errorf("Title: got %q, want %q", got.Title, "Food")
	}
	if got.Slug != "food" {
		t.Errorf("Slug: got %q, want %q", got.Slug, "food")
	}

	bySlug, err := s.GetConsumableBySlug(ctx, "food")
	if err != nil {
		t.Fatalf("GetConsumableBySlug: %v", err)
	}
	if bySlug.ID != "con-1" {
		t.Errorf("ID: got %q, want con-1", bySlug.ID)
	}
}

func TestCreateConsumable_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	a := &domain.Consumable{ID: "con-1", Title: "Food", Slug: "food", CreatedAt: now, UpdatedAt: now}
	b := &domain.Consumable{ID: "con-2", Title: "Other", Slug: "food", CreatedAt: now, UpdatedAt: now}

	if err := s.CreateConsumable(ctx, a); err != nil {
		t.Fatalf("CreateConsumable: %v", err)
	}
	err := s.CreateConsumable(ctx, b)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetConsumable_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetConsumable(context.Background(), "con-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryUniqueness_PerAssortment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)

	cat, err := s.GetCategory(ctx, product.CategoryID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}

	now := time.Now()

	// Same title in the same assortment is rejected.
	dup := &domain.Category{
		ID: id.MustGenerate("cat"), AssortmentID: cat.AssortmentID,
		Title: cat.Title, Slug: "cheese-2",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCategory(ctx, dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate title, got %v", err)
	}

	// Same title in a different assortment is fine.
	ast, err := s.GetAssortment(ctx, cat.AssortmentID)
	if err != nil {
		t.Fatalf("GetAssortment: %v", err)
	}
	other := &domain.Assortment{
		ID: id.MustGenerate("ast"), ConsumableID: ast.ConsumableID,
		Title: "Pantry", Slug: "pantry",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateAssortment(ctx, other); err != nil {
		t.Fatalf("CreateAssortment: %v", err)
	}

	elsewhere := &domain.Category{
		ID: id.MustGenerate("cat"), AssortmentID: other.ID,
		Title: cat.Title, Slug: cat.Slug,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCategory(ctx, elsewhere); err != nil {
		t.Errorf("same title under another assortment should be allowed: %v", err)
	}
}

func TestGetProductHierarchy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)

	h, err := s.GetProductHierarchy(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProductHierarchy: %v", err)
	}

	if h.Product.ID != product.ID {
		t.Errorf("Product.ID: got %q, want %q", h.Product.ID, product.ID)
	}
	if h.Category.Title != "Cheese" {
		t.Errorf("Category.Title: got %q, want Cheese", h.Category.Title)
	}
	if h.Assortment.Title != "Fresh products" {
		t.Errorf("Assortment.Title: got %q", h.Assortment.Title)
	}
	if h.Consumable.Title != "Food" {
		t.Errorf("Consumable.Title: got %q", h.Consumable.Title)
	}
	if h.Brand == nil || h.Brand.Title != "Juhlin" {
		t.Errorf("Brand not resolved: %+v", h.Brand)
	}
	if want := "Food / Fresh products / Cheese / Comté"; h.Path() != want {
		t.Errorf("Path: got %q, want %q", h.Path(), want)
	}
}

func TestDeleteConsumable_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)

	cat, err := s.GetCategory(ctx, product.CategoryID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	ast, err := s.GetAssortment(ctx, cat.AssortmentID)
	if err != nil {
		t.Fatalf("GetAssortment: %v", err)
	}

	if err := s.DeleteConsumable(ctx, ast.ConsumableID); err != nil {
		t.Fatalf("DeleteConsumable: %v", err)
	}

	// Everything below the consumable is gone.
	if _, err := s.GetAssortment(ctx, ast.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("assortment should cascade, got %v", err)
	}
	if _, err := s.GetCategory(ctx, cat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("category should cascade, got %v", err)
	}
	if _, err := s.GetProduct(ctx, product.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("product should cascade, got %v", err)
	}
}

func TestDeleteBrand_ClearsProductReference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)

	if err := s.DeleteBrand(ctx, product.BrandID); err != nil {
		t.Fatalf("DeleteBrand: %v", err)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.BrandID != "" {
		t.Errorf("brand reference should be cleared, got %q", got.BrandID)
	}
}

func TestListProducts_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)

	seedProduct(t, s, product.CategoryID, "Brie", "brie")
	seedProduct(t, s, product.CategoryID, "Emmental", "emmental")

	page1, err := s.ListProducts(ctx, store.PaginationParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(page1.Items) != 2 {
		t.Fatalf("page 1: got %d items, want 2", len(page1.Items))
	}
	if !page1.HasMore {
		t.Fatal("page 1 should have more")
	}
	if page1.Total != 3 {
		t.Errorf("Total: got %d, want 3", page1.Total)
	}
	// Ordered by title: Brie, Comté.
	if page1.Items[0].Title != "Brie" {
		t.Errorf("first item: got %q, want Brie", page1.Items[0].Title)
	}

	page2, err := s.ListProducts(ctx, store.PaginationParams{Limit: 2, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("ListProducts page 2: %v", err)
	}
	if len(page2.Items) != 1 {
		t.Fatalf("page 2: got %d items, want 1", len(page2.Items))
	}
	if page2.HasMore {
		t.Error("page 2 should be the last page")
	}
}
