package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// assortmentColumns is the ordered list of columns selected in assortment queries.
// Must match the scan order in scanAssortment.
const assortmentColumns = `id, consumable_id, title, slug, created_at, updated_at`

// scanAssortment scans a sql.Row (or sql.Rows via its Scan method) into a domain.Assortment.
func scanAssortment(scanner interface{ Scan(dest ...any) error }) (*domain.Assortment, error) {
	var a domain.Assortment

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&a.ID,
		&a.ConsumableID,
		&a.Title,
		&a.Slug,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateAssortment inserts a new assortment into the database.
// Returns store.ErrAlreadyExists on duplicate title or slug.
func (s *Store) CreateAssortment(ctx context.Context, a *domain.Assortment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assortments (id, consumable_id, title, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.ConsumableID,
		a.Title,
		a.Slug,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAssortment retrieves an assortment by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetAssortment(ctx context.Context, id string) (*domain.Assortment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assortmentColumns+` FROM assortments WHERE id = ?`, id)

	a, err := scanAssortment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAssortmentBySlug retrieves an assortment by slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetAssortmentBySlug(ctx context.Context, slug string) (*domain.Assortment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assortmentColumns+` FROM assortments WHERE slug = ?`, slug)

	a, err := scanAssortment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAssortment updates an existing assortment.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateAssortment(ctx context.Context, a *domain.Assortment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assortments
		SET consumable_id = ?, title = ?, slug = ?, updated_at = ?
		WHERE id = ?`,
		a.ConsumableID,
		a.Title,
		a.Slug,
		formatTime(a.UpdatedAt),
		a.ID,
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

// DeleteAssortment removes an assortment by ID, cascading to its categories
// and products.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteAssortment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assortments WHERE id = ?`, id)
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

// ListAssortments returns all assortments ordered by title.
func (s *Store) ListAssortments(ctx context.Context) ([]*domain.Assortment, error) {
	return s.queryAssortments(ctx,
		`SELECT `+assortmentColumns+` FROM assortments ORDER BY title ASC`)
}

// ListAssortmentsByConsumable returns a consumable's assortments ordered by title.
func (s *Store) ListAssortmentsByConsumable(ctx context.Context, consumableID string) ([]*domain.Assortment, error) {
	return s.queryAssortments(ctx,
		`SELECT `+assortmentColumns+` FROM assortments WHERE consumable_id = ? ORDER BY title ASC`,
		consumableID)
}

func (s *Store) queryAssortments(ctx context.Context, query string, args ...any) ([]*domain.Assortment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assortments []*domain.Assortment
	for rows.Next() {
		a, err := scanAssortment(rows)
		if err != nil {
			return nil, err
		}
		assortments = append(assortments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if assortments == nil {
		assortments = []*domain.Assortment{}
	}
	return assortments, nil
}
