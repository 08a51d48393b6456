package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// shoppingColumns is the ordered list of columns selected in shopping queries.
// Must match the scan order in scanShopping.
const shoppingColumns = `id, title, planning, done, created_at, updated_at`

// scanShopping scans a sql.Row (or sql.Rows via its Scan method) into a domain.Shopping.
func scanShopping(scanner interface{ Scan(dest ...any) error }) (*domain.Shopping, error) {
	var sh domain.Shopping

	var (
		planning  string
		done      int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&sh.ID,
		&sh.Title,
		&planning,
		&done,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sh.Done = done != 0

	sh.Planning, err = parseTime(planning)
	if err != nil {
		return nil, err
	}
	sh.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sh.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &sh, nil
}

// CreateShopping inserts a new shopping list into the database.
func (s *Store) CreateShopping(ctx context.Context, sh *domain.Shopping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shoppings (id, title, planning, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sh.ID,
		sh.Title,
		formatTime(sh.Planning),
		boolToInt(sh.Done),
		formatTime(sh.CreatedAt),
		formatTime(sh.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetShopping retrieves a shopping list by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetShopping(ctx context.Context, id string) (*domain.Shopping, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shoppingColumns+` FROM shoppings WHERE id = ?`, id)

	sh, err := scanShopping(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// UpdateShopping updates an existing shopping list.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateShopping(ctx context.Context, sh *domain.Shopping) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shoppings SET title = ?, planning = ?, done = ?, updated_at = ?
		WHERE id = ?`,
		sh.Title,
		formatTime(sh.Planning),
		boolToInt(sh.Done),
		formatTime(sh.UpdatedAt),
		sh.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteShopping removes a shopping list by ID, cascading to its items.
// Sessions that had this list selected get their selection cleared by the
// schema's ON DELETE SET NULL.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteShopping(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shoppings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListShoppings returns all shopping lists, active lists first, most
// recently planned at the top of each group.
func (s *Store) ListShoppings(ctx context.Context) ([]*domain.Shopping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoppingColumns+` FROM shoppings ORDER BY done ASC, planning DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shoppings []*domain.Shopping
	for rows.Next() {
		sh, err := scanShopping(rows)
		if err != nil {
			return nil, err
		}
		shoppings = append(shoppings, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if shoppings == nil {
		shoppings = []*domain.Shopping{}
	}
	return shoppings, nil
}
