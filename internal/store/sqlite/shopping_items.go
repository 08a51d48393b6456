package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// shoppingItemColumns is the ordered list of columns selected in item queries.
// Must match the scan order in scanShoppingItem.
const shoppingItemColumns = `id, shopping_id, product_id, quantity, done, created_at`

// scanShoppingItem scans a sql.Row (or sql.Rows via its Scan method) into a domain.ShoppingItem.
func scanShoppingItem(scanner interface{ Scan(dest ...any) error }) (*domain.ShoppingItem, error) {
	var it domain.ShoppingItem

	var (
		done      int
		createdAt string
	)

	err := scanner.Scan(
		&it.ID,
		&it.ShoppingID,
		&it.ProductID,
		&it.Quantity,
		&done,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	it.Done = done != 0

	it.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &it, nil
}

// GetShoppingItem retrieves the line for a product within a list.
// Returns store.ErrNotFound if the product has no line in that list.
func (s *Store) GetShoppingItem(ctx context.Context, shoppingID, productID string) (*domain.ShoppingItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shoppingItemColumns+` FROM shopping_items
		WHERE shopping_id = ? AND product_id = ?`, shoppingID, productID)

	it, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// ListShoppingItems returns a list's items ordered by creation time.
func (s *Store) ListShoppingItems(ctx context.Context, shoppingID string) ([]domain.ShoppingItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoppingItemColumns+` FROM shopping_items
		WHERE shopping_id = ? ORDER BY created_at ASC, id ASC`, shoppingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.ShoppingItem{}
	}
	return items, nil
}

// ListShoppingItemDetails returns a list's items with each product's full
// catalog ancestry resolved, ordered by product title. One query for the
// whole list; callers never fetch per item.
func (s *Store) ListShoppingItemDetails(ctx context.Context, shoppingID string) ([]*store.ShoppingItemDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.shopping_id, i.product_id, i.quantity, i.done, i.created_at,
			`+hierarchyColumns+`
		FROM shopping_items i
		JOIN products p ON p.id = i.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN assortments a ON a.id = c.assortment_id
		JOIN consumables co ON co.id = a.consumable_id
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE i.shopping_id = ?
		ORDER BY p.title ASC`, shoppingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*store.ShoppingItemDetail
	for rows.Next() {
		d, err := scanShoppingItemDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if details == nil {
		details = []*store.ShoppingItemDetail{}
	}
	return details, nil
}

// scanShoppingItemDetail scans an item row joined with the product hierarchy.
func scanShoppingItemDetail(rows *sql.Rows) (*store.ShoppingItemDetail, error) {
	var d store.ShoppingItemDetail

	var (
		itemDone      int
		itemCreatedAt string

		pBrandID   sql.NullString
		pCover     sql.NullString
		pCreated   string
		pUpdated   string
		cCreated   string
		cUpdated   string
		aCreated   string
		aUpdated   string
		coCreated  string
		coUpdated  string
		bID        sql.NullString
		bTitle     sql.NullString
		bSlug      sql.NullString
		bCover     sql.NullString
		bCreatedAt sql.NullString
		bUpdatedAt sql.NullString
	)

	h := &d.Product

	err := rows.Scan(
		&d.Item.ID, &d.Item.ShoppingID, &d.Item.ProductID, &d.Item.Quantity,
		&itemDone, &itemCreatedAt,
		&h.Product.ID, &h.Product.CategoryID, &pBrandID, &h.Product.Title,
		&h.Product.Slug, &h.Product.Description, &pCover, &pCreated, &pUpdated,
		&h.Category.ID, &h.Category.AssortmentID, &h.Category.Title,
		&h.Category.Slug, &cCreated, &cUpdated,
		&h.Assortment.ID, &h.Assortment.ConsumableID, &h.Assortment.Title,
		&h.Assortment.Slug, &aCreated, &aUpdated,
		&h.Consumable.ID, &h.Consumable.Title, &h.Consumable.Slug,
		&coCreated, &coUpdated,
		&bID, &bTitle, &bSlug, &bCover, &bCreatedAt, &bUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Item.Done = itemDone != 0
	if d.Item.CreatedAt, err = parseTime(itemCreatedAt); err != nil {
		return nil, err
	}

	if pBrandID.Valid {
		h.Product.BrandID = pBrandID.String
	}
	if pCover.Valid {
		h.Product.Cover = pCover.String
	}

	if h.Product.CreatedAt, err = parseTime(pCreated); err != nil {
		return nil, err
	}
	if h.Product.UpdatedAt, err = parseTime(pUpdated); err != nil {
		return nil, err
	}
	if h.Category.CreatedAt, err = parseTime(cCreated); err != nil {
		return nil, err
	}
	if h.Category.UpdatedAt, err = parseTime(cUpdated); err != nil {
		return nil, err
	}
	if h.Assortment.CreatedAt, err = parseTime(aCreated); err != nil {
		return nil, err
	}
	if h.Assortment.UpdatedAt, err = parseTime(aUpdated); err != nil {
		return nil, err
	}
	if h.Consumable.CreatedAt, err = parseTime(coCreated); err != nil {
		return nil, err
	}
	if h.Consumable.UpdatedAt, err = parseTime(coUpdated); err != nil {
		return nil, err
	}

	if bID.Valid {
		brand := domain.Brand{
			ID:    bID.String,
			Title: bTitle.String,
			Slug:  bSlug.String,
		}
		if bCover.Valid {
			brand.Cover = bCover.String
		}
		if brand.CreatedAt, err = parseTime(bCreatedAt.String); err != nil {
			return nil, err
		}
		if brand.UpdatedAt, err = parseTime(bUpdatedAt.String); err != nil {
			return nil, err
		}
		h.Brand = &brand
	}

	return &d, nil
}

// CreateShoppingItem inserts a new line and re-derives the owning list's
// done flag in the same transaction (an unchecked item demotes a done list).
// Returns store.ErrAlreadyExists if the product already has a line in the list.
func (s *Store) CreateShoppingItem(ctx context.Context, item *domain.ShoppingItem) (*store.ItemMutationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shopping_items (id, shopping_id, product_id, quantity, done, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.ShoppingID,
		item.ProductID,
		item.Quantity,
		boolToInt(item.Done),
		formatTime(item.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	done, changed, err := s.deriveShoppingDone(ctx, tx, item.ShoppingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &store.ItemMutationResult{
		Item:        item,
		DoneChanged: changed,
		Done:        done,
	}, nil
}

// UpdateShoppingItemQuantity updates a line's quantity in place. Quantity
// edits never touch done flags, so no re-derivation runs.
// Returns store.ErrNotFound if the line does not exist.
func (s *Store) UpdateShoppingItemQuantity(ctx context.Context, shoppingID, productID string, quantity int) (*domain.ShoppingItem, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shopping_items SET quantity = ?
		WHERE shopping_id = ? AND product_id = ?`,
		quantity, shoppingID, productID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetShoppingItem(ctx, shoppingID, productID)
}

// DeleteShoppingItem removes a line and re-derives the owning list's done
// flag in the same transaction (removing the last unchecked item can
// legitimately complete a list). Returns a snapshot of the removed line.
// Returns store.ErrNotFound if the line does not exist.
func (s *Store) DeleteShoppingItem(ctx context.Context, shoppingID, productID string) (*store.ItemMutationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Snapshot the line before deleting so the caller can report what went.
	row := tx.QueryRowContext(ctx,
		`SELECT `+shoppingItemColumns+` FROM shopping_items
		WHERE shopping_id = ? AND product_id = ?`, shoppingID, productID)
	snapshot, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM shopping_items WHERE shopping_id = ? AND product_id = ?`,
		shoppingID, productID); err != nil {
		return nil, err
	}

	done, changed, err := s.deriveShoppingDone(ctx, tx, shoppingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &store.ItemMutationResult{
		Item:        snapshot,
		DoneChanged: changed,
		Done:        done,
	}, nil
}

// SetShoppingItemDone sets a line's done flag and re-derives the owning
// list's done flag in the same transaction, so a partially applied toggle
// is never observable.
// Returns store.ErrNotFound if the line does not exist.
func (s *Store) SetShoppingItemDone(ctx context.Context, shoppingID, productID string, done bool) (*store.ItemMutationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shopping_items SET done = ?
		WHERE shopping_id = ? AND product_id = ?`,
		boolToInt(done), shoppingID, productID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+shoppingItemColumns+` FROM shopping_items
		WHERE shopping_id = ? AND product_id = ?`, shoppingID, productID)
	item, err := scanShoppingItem(row)
	if err != nil {
		return nil, err
	}

	listDone, changed, err := s.deriveShoppingDone(ctx, tx, shoppingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &store.ItemMutationResult{
		Item:        item,
		DoneChanged: changed,
		Done:        listDone,
	}, nil
}

// deriveShoppingDone applies domain.DeriveDone to the list's current items
// inside the caller's transaction and persists the new done flag when it
// changed. Returns the current value of the flag after derivation.
func (s *Store) deriveShoppingDone(ctx context.Context, tx *sql.Tx, shoppingID string) (done, changed bool, err error) {
	var currentDone int
	err = tx.QueryRowContext(ctx,
		`SELECT done FROM shoppings WHERE id = ?`, shoppingID).Scan(&currentDone)
	if err == sql.ErrNoRows {
		return false, false, store.ErrNotFound
	}
	if err != nil {
		return false, false, err
	}

	var itemCount, undoneCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN done = 0 THEN 1 ELSE 0 END), 0)
		FROM shopping_items WHERE shopping_id = ?`, shoppingID).
		Scan(&itemCount, &undoneCount)
	if err != nil {
		return false, false, err
	}

	newValue, changed := domain.DeriveDone(currentDone != 0, itemCount, undoneCount)
	if !changed {
		return newValue, false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shoppings SET done = ?, updated_at = ? WHERE id = ?`,
		boolToInt(newValue), formatTime(nowUTC()), shoppingID)
	if err != nil {
		return false, false, err
	}

	return newValue, true, nil
}
