package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// consumableColumns is the ordered list of columns selected in consumable queries.
// Must match the scan order in scanConsumable.
const consumableColumns = `id, title, slug, created_at, updated_at`

// scanConsumable scans a sql.Row (or sql.Rows via its Scan method) into a domain.Consumable.
func scanConsumable(scanner interface{ Scan(dest ...any) error }) (*domain.Consumable, error) {
	var c domain.Consumable

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateConsumable inserts a new consumable into the database.
// Returns store.ErrAlreadyExists on duplicate title or slug.
func (s *Store) CreateConsumable(ctx context.Context, c *domain.Consumable) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consumables (id, title, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID,
		c.Title,
		c.Slug,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetConsumable retrieves a consumable by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetConsumable(ctx context.Context, id string) (*domain.Consumable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+consumableColumns+` FROM consumables WHERE id = ?`, id)

	c, err := scanConsumable(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetConsumableBySlug retrieves a consumable by slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetConsumableBySlug(ctx context.Context, slug string) (*domain.Consumable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+consumableColumns+` FROM consumables WHERE slug = ?`, slug)

	c, err := scanConsumable(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConsumable updates an existing consumable.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateConsumable(ctx context.Context, c *domain.Consumable) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE consumables SET title = ?, slug = ?, updated_at = ? WHERE id = ?`,
		c.Title,
		c.Slug,
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
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

// DeleteConsumable removes a consumable by ID, cascading to its assortments,
// categories, and products.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteConsumable(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM consumables WHERE id = ?`, id)
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

// ListConsumables returns all consumables ordered by title.
func (s *Store) ListConsumables(ctx context.Context) ([]*domain.Consumable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+consumableColumns+` FROM consumables ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consumables []*domain.Consumable
	for rows.Next() {
		c, err := scanConsumable(rows)
		if err != nil {
			return nil, err
		}
		consumables = append(consumables, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if consumables == nil {
		consumables = []*domain.Consumable{}
	}
	return consumables, nil
}
