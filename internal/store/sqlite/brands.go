package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// brandColumns is the ordered list of columns selected in brand queries.
// Must match the scan order in scanBrand.
const brandColumns = `id, title, slug, cover, created_at, updated_at`

// scanBrand scans a sql.Row (or sql.Rows via its Scan method) into a domain.Brand.
func scanBrand(scanner interface{ Scan(dest ...any) error }) (*domain.Brand, error) {
	var b domain.Brand

	var (
		cover     sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Slug,
		&cover,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cover.Valid {
		b.Cover = cover.String
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBrand inserts a new brand into the database.
// Returns store.ErrAlreadyExists on duplicate title or slug.
func (s *Store) CreateBrand(ctx context.Context, b *domain.Brand) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brands (id, title, slug, cover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Title,
		b.Slug,
		nullString(b.Cover),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBrand retrieves a brand by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = ?`, id)

	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBrandBySlug retrieves a brand by slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetBrandBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE slug = ?`, slug)

	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBrand updates an existing brand.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE brands SET title = ?, slug = ?, cover = ?, updated_at = ? WHERE id = ?`,
		b.Title,
		b.Slug,
		nullString(b.Cover),
		formatTime(b.UpdatedAt),
		b.ID,
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

// DeleteBrand removes a brand by ID. Products referencing it keep existing
// with their brand reference cleared.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteBrand(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
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

// ListBrands returns all brands ordered by title.
func (s *Store) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+brandColumns+` FROM brands ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []*domain.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if brands == nil {
		brands = []*domain.Brand{}
	}
	return brands, nil
}
