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

// addItem inserts a line for a product with the given quantity and done flag.
func addItem(t *testing.T, s *Store, shoppingID, productID string, quantity int, done bool) *domain.ShoppingItem {
	t.Helper()
	item := &domain.ShoppingItem{
		ID:         id.MustGenerate("item"),
		ShoppingID: shoppingID,
		ProductID:  productID,
		Quantity:   quantity,
		Done:       done,
		CreatedAt:  time.Now(),
	}
	if _, err := s.CreateShoppingItem(context.Background(), item); err != nil {
		t.Fatalf("CreateShoppingItem: %v", err)
	}
	return item
}

func TestCreateShoppingItem_DuplicateProduct(t *testing.T) {
	s := newTestStore(t)
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, product.ID, 1, false)

	dup := &domain.ShoppingItem{
		ID:         id.MustGenerate("item"),
		ShoppingID: sh.ID,
		ProductID:  product.ID,
		Quantity:   2,
		CreatedAt:  time.Now(),
	}
	_, err := s.CreateShoppingItem(context.Background(), dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestToggleLastItem_PromotesList(t *testing.T) {
	// Scenario: {Corn: done=false, Steak: done=true}; toggling Corn to done
	// promotes the list and the status reports 2 dones / 0 opens.
	s := newTestStore(t)
	ctx := context.Background()
	corn := seedCatalog(t, s)
	steak := seedProduct(t, s, corn.CategoryID, "Steak", "steak")
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, corn.ID, 1, false)
	addItem(t, s, sh.ID, steak.ID, 1, true)

	res, err := s.SetShoppingItemDone(ctx, sh.ID, corn.ID, true)
	if err != nil {
		t.Fatalf("SetShoppingItemDone: %v", err)
	}
	if !res.DoneChanged {
		t.Error("list done flag should have changed")
	}
	if !res.Done {
		t.Error("list should be done")
	}

	got, err := s.GetShopping(ctx, sh.ID)
	if err != nil {
		t.Fatalf("GetShopping: %v", err)
	}
	if !got.Done {
		t.Error("persisted list should be done")
	}

	items, err := s.ListShoppingItems(ctx, sh.ID)
	if err != nil {
		t.Fatalf("ListShoppingItems: %v", err)
	}
	rec := got.Status(items)
	if rec.Status != domain.ShoppingStatusDone || rec.Dones != 2 || rec.Opens != 0 {
		t.Errorf("status: got %+v, want done/2/0", rec)
	}
}

func TestToggleItemBack_DemotesList(t *testing.T) {
	// Scenario: done list with two checked items; unchecking one demotes
	// the list to ongoing.
	s := newTestStore(t)
	ctx := context.Background()
	a := seedCatalog(t, s)
	b := seedProduct(t, s, a.CategoryID, "Brie", "brie")
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, a.ID, 1, true)
	addItem(t, s, sh.ID, b.ID, 1, false)
	if _, err := s.SetShoppingItemDone(ctx, sh.ID, b.ID, true); err != nil {
		t.Fatalf("SetShoppingItemDone: %v", err)
	}

	res, err := s.SetShoppingItemDone(ctx, sh.ID, b.ID, false)
	if err != nil {
		t.Fatalf("SetShoppingItemDone: %v", err)
	}
	if !res.DoneChanged || res.Done {
		t.Errorf("expected demotion, got changed=%v done=%v", res.DoneChanged, res.Done)
	}

	got, err := s.GetShopping(ctx, sh.ID)
	if err != nil {
		t.Fatalf("GetShopping: %v", err)
	}
	items, err := s.ListShoppingItems(ctx, sh.ID)
	if err != nil {
		t.Fatalf("ListShoppingItems: %v", err)
	}
	rec := got.Status(items)
	if rec.Status != domain.ShoppingStatusOngoing || rec.Dones != 1 || rec.Opens != 1 {
		t.Errorf("status: got %+v, want ongoing/1/1", rec)
	}
}

func TestSetShoppingItemDone_MissingLine(t *testing.T) {
	s := newTestStore(t)
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")

	_, err := s.SetShoppingItemDone(context.Background(), sh.ID, product.ID, true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateShoppingItemQuantity_SkipsDerivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")

	// The item is inserted already checked, so the insert's own
	// derivation promotes the list.
	addItem(t, s, sh.ID, product.ID, 1, true)
	got, err := s.GetShopping(ctx, sh.ID)
	if err != nil {
		t.Fatalf("GetShopping: %v", err)
	}
	if !got.Done {
		t.Fatal("list should be done after inserting a checked-only item set")
	}

	item, err := s.UpdateShoppingItemQuantity(ctx, sh.ID, product.ID, 4)
	if err != nil {
		t.Fatalf("UpdateShoppingItemQuantity: %v", err)
	}
	if item.Quantity != 4 {
		t.Errorf("Quantity: got %d, want 4", item.Quantity)
	}
	if !item.Done {
		t.Error("quantity edit must not touch the item done flag")
	}

	got, err = s.GetShopping(ctx, sh.ID)
	if err != nil {
		t.Fatalf("GetShopping: %v", err)
	}
	if !got.Done {
		t.Error("quantity edit must not touch the list done flag")
	}
}

func TestDeleteShoppingItem_ReturnsSnapshotAndDerives(t *testing.T) {
	// Deleting the last unchecked item completes the list.
	s := newTestStore(t)
	ctx := context.Background()
	a := seedCatalog(t, s)
	b := seedProduct(t, s, a.CategoryID, "Brie", "brie")
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, a.ID, 2, true)
	addItem(t, s, sh.ID, b.ID, 1, false)

	res, err := s.DeleteShoppingItem(ctx, sh.ID, b.ID)
	if err != nil {
		t.Fatalf("DeleteShoppingItem: %v", err)
	}
	if res.Item.ProductID != b.ID || res.Item.Quantity != 1 {
		t.Errorf("snapshot: got %+v", res.Item)
	}
	if !res.DoneChanged || !res.Done {
		t.Errorf("removing the last unchecked item should complete the list, got changed=%v done=%v",
			res.DoneChanged, res.Done)
	}

	if _, err := s.GetShoppingItem(ctx, sh.ID, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("line should be gone, got %v", err)
	}
}

func TestDeleteShoppingItem_Missing(t *testing.T) {
	s := newTestStore(t)
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")

	_, err := s.DeleteShoppingItem(context.Background(), sh.ID, product.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLastItem_EmptyListStaysNotDone(t *testing.T) {
	// An empty list never promotes to done, even right after its only
	// unchecked item is removed.
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, product.ID, 1, false)

	res, err := s.DeleteShoppingItem(ctx, sh.ID, product.ID)
	if err != nil {
		t.Fatalf("DeleteShoppingItem: %v", err)
	}
	if res.DoneChanged || res.Done {
		t.Errorf("empty list must stay open, got changed=%v done=%v", res.DoneChanged, res.Done)
	}
}

func TestDeleteShopping_CascadesItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedCatalog(t, s)
	sh := seedShopping(t, s, "Week 36")
	addItem(t, s, sh.ID, product.ID, 1, false)

	if err := s.DeleteShopping(ctx, sh.ID); err != nil {
		t.Fatalf("DeleteShopping: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM shopping_items WHERE shopping_id = ?`, sh.ID).Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Errorf("items should cascade with their list, got %d rows", count)
	}
}

func TestListShoppingItemDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	comte := seedCatalog(t, s)
	brie := seedProduct(t, s, comte.CategoryID, "Brie", "brie")
	sh := seedShopping(t, s, "Week 36")

	addItem(t, s, sh.ID, comte.ID, 2, false)
	addItem(t, s, sh.ID, brie.ID, 1, true)

	details, err := s.ListShoppingItemDetails(ctx, sh.ID)
	if err != nil {
		t.Fatalf("ListShoppingItemDetails: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("got %d details, want 2", len(details))
	}

	// Ordered by product title: Brie before Comté.
	if details[0].Product.Product.Title != "Brie" {
		t.Errorf("first detail: got %q, want Brie", details[0].Product.Product.Title)
	}
	if details[1].Item.Quantity != 2 {
		t.Errorf("Comté quantity: got %d, want 2", details[1].Item.Quantity)
	}
	if details[0].Product.Consumable.Title != "Food" {
		t.Errorf("ancestry not resolved: %+v", details[0].Product.Consumable)
	}
	if details[1].Product.Brand == nil {
		t.Error("Comté brand should be resolved")
	}
	if details[0].Product.Brand != nil {
		t.Error("Brie has no brand")
	}
}
