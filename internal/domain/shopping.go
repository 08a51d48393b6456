package domain

import "time"

// ShoppingStatus describes the derived progress of a shopping list.
type ShoppingStatus string

const (
	// ShoppingStatusOpen means the list is not done and no item is checked yet.
	ShoppingStatusOpen ShoppingStatus = "open"
	// ShoppingStatusOngoing means the list is not done but at least one item is checked.
	ShoppingStatusOngoing ShoppingStatus = "ongoing"
	// ShoppingStatusDone means the list's done flag is set.
	ShoppingStatusDone ShoppingStatus = "done"
)

// Shopping is a shopping list: a named collection of product line items with
// an overall completion flag. The Done flag is only ever mutated through
// DeriveDone after an item-level change, never set directly from counts.
type Shopping struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"` // Optional display name
	Planning  time.Time `json:"planning"`        // When the list is intended to be used
	Done      bool      `json:"done"`
}

// Touch updates the list's UpdatedAt timestamp.
func (s *Shopping) Touch() { s.UpdatedAt = time.Now() }

// ShoppingItem is one line within a shopping list: one product with a
// quantity and its own done flag. The (shopping, product) pair is unique,
// a product never appears twice in the same list.
type ShoppingItem struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	ShoppingID string    `json:"shopping_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"` // Always >= 1
	Done       bool      `json:"done"`
}

// StatusRecord is the derived progress report of a shopping list:
// its status plus counts of checked and unchecked items.
type StatusRecord struct {
	Status ShoppingStatus `json:"status"`
	Dones  int            `json:"dones"`
	Opens  int            `json:"opens"`
}

// Status derives the list's progress from its current items.
//   - "done" if the aggregate done flag is set
//   - "ongoing" if not done but at least one item is checked
//   - "open" otherwise
func (s *Shopping) Status(items []ShoppingItem) StatusRecord {
	dones := 0
	for _, it := range items {
		if it.Done {
			dones++
		}
	}
	rec := StatusRecord{Dones: dones, Opens: len(items) - dones}
	switch {
	case s.Done:
		rec.Status = ShoppingStatusDone
	case dones > 0:
		rec.Status = ShoppingStatusOngoing
	default:
		rec.Status = ShoppingStatusOpen
	}
	return rec
}

// DeriveDone applies the list/items consistency rule after an item-level
// mutation and reports whether the aggregate done flag must change.
//
//   - A list that is not done becomes done when every one of its items is
//     checked. An empty list never becomes done: completion requires at
//     least one item, so a freshly created list stays open.
//   - A done list reverts to not-done as soon as any item regresses to
//     unchecked (or an unchecked item is added).
//   - Otherwise nothing changes.
//
// The rule runs after add, delete, and toggle. Plain quantity edits do not
// touch item done flags and skip it. Returned changed=false means the
// current value stands; callers must not persist in that case.
func DeriveDone(currentDone bool, itemCount, undoneCount int) (newValue, changed bool) {
	if !currentDone && undoneCount == 0 && itemCount > 0 {
		return true, true
	}
	if currentDone && undoneCount > 0 {
		return false, true
	}
	return currentDone, false
}

// ItemOperation tags the outcome of a shopping item mutation.
type ItemOperation string

const (
	// ItemOperationAddition means a new item was created.
	ItemOperationAddition ItemOperation = "addition"
	// ItemOperationEdition means an existing item's quantity was updated.
	ItemOperationEdition ItemOperation = "edition"
	// ItemOperationDeletion means the item was removed.
	ItemOperationDeletion ItemOperation = "deletion"
	// ItemOperationToggle means the item's done flag was set.
	ItemOperationToggle ItemOperation = "toggle"
	// ItemOperationRejected means the request was semantically void
	// (quantity below 1) and nothing was mutated.
	ItemOperationRejected ItemOperation = "rejected"
)

// Inventory is a read-only, request-scoped projection of the currently
// selected shopping list: the list plus its items loaded once, indexed by
// product for constant-time lookups. It is rebuilt every request and never
// cached across requests.
type Inventory struct {
	Shopping Shopping       `json:"shopping"`
	Items    []ShoppingItem `json:"items"`

	byProduct map[string]int // product ID -> index into Items
}

// NewInventory builds the projection for a shopping list and its items.
func NewInventory(shopping Shopping, items []ShoppingItem) *Inventory {
	inv := &Inventory{
		Shopping:  shopping,
		Items:     items,
		byProduct: make(map[string]int, len(items)),
	}
	for i, it := range items {
		inv.byProduct[it.ProductID] = i
	}
	return inv
}

// HasProduct reports whether the product already has a line in the list.
func (inv *Inventory) HasProduct(productID string) bool {
	_, ok := inv.byProduct[productID]
	return ok
}

// ItemForProduct returns the item for a product, or nil if absent.
func (inv *Inventory) ItemForProduct(productID string) *ShoppingItem {
	i, ok := inv.byProduct[productID]
	if !ok {
		return nil
	}
	return &inv.Items[i]
}

// QuantityForProduct returns the quantity for a product, or 0 if absent.
func (inv *Inventory) QuantityForProduct(productID string) int {
	if it := inv.ItemForProduct(productID); it != nil {
		return it.Quantity
	}
	return 0
}

// Status derives the projected list's progress from the projected items.
func (inv *Inventory) Status() StatusRecord {
	return inv.Shopping.Status(inv.Items)
}
