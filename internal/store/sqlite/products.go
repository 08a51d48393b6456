package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, category_id, brand_id, title, slug, description, cover,
	created_at, updated_at`

// scanProduct scans a sql.Row (or sql.Rows via its Scan method) into a domain.Product.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product

	var (
		brandID   sql.NullString
		cover     sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.CategoryID,
		&brandID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&cover,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if brandID.Valid {
		p.BrandID = brandID.String
	}
	if cover.Valid {
		p.Cover = cover.String
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateProduct inserts a new product into the database.
// Returns store.ErrAlreadyExists on duplicate title or slug.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, category_id, brand_id, title, slug, description, cover,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.CategoryID,
		nullString(p.BrandID),
		p.Title,
		p.Slug,
		p.Description,
		nullString(p.Cover),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetProduct retrieves a product by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductBySlug retrieves a product by slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// hierarchyColumns selects a product with its full ancestry resolved.
// Must match the scan order in scanProductHierarchy.
const hierarchyColumns = `
	p.id, p.category_id, p.brand_id, p.title, p.slug, p.description, p.cover,
	p.created_at, p.updated_at,
	c.id, c.assortment_id, c.title, c.slug, c.created_at, c.updated_at,
	a.id, a.consumable_id, a.title, a.slug, a.created_at, a.updated_at,
	co.id, co.title, co.slug, co.created_at, co.updated_at,
	b.id, b.title, b.slug, b.cover, b.created_at, b.updated_at`

// hierarchyJoins joins a product to its category, assortment, consumable,
// and optional brand in one pass.
const hierarchyJoins = `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN assortments a ON a.id = c.assortment_id
	JOIN consumables co ON co.id = a.consumable_id
	LEFT JOIN brands b ON b.id = p.brand_id`

// scanProductHierarchy scans a joined row into a domain.ProductHierarchy.
func scanProductHierarchy(scanner interface{ Scan(dest ...any) error }) (*domain.ProductHierarchy, error) {
	var h domain.ProductHierarchy

	var (
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

	err := scanner.Scan(
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

	return &h, nil
}

// GetProductHierarchy retrieves a product with its full ancestry resolved
// (category, assortment, consumable, optional brand) in a single query.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) GetProductHierarchy(ctx context.Context, id string) (*domain.ProductHierarchy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+hierarchyColumns+hierarchyJoins+` WHERE p.id = ?`, id)

	h, err := scanProductHierarchy(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// UpdateProduct updates an existing product.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = ?, brand_id = ?, title = ?, slug = ?, description = ?,
			cover = ?, updated_at = ?
		WHERE id = ?`,
		p.CategoryID,
		nullString(p.BrandID),
		p.Title,
		p.Slug,
		p.Description,
		nullString(p.Cover),
		formatTime(p.UpdatedAt),
		p.ID,
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

// DeleteProduct removes a product by ID, cascading to any shopping items
// referencing it.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

// ListProducts returns a paginated list of products ordered by title, id.
func (s *Store) ListProducts(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Product], error) {
	params.Validate()

	// Decode cursor: format is "title|id".
	var cursorTitle, cursorID string
	if params.Cursor != "" {
		decoded, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, fmt.Errorf("decode cursor: %w", err)
		}
		parts := strings.SplitN(decoded, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid cursor format")
		}
		cursorTitle = parts[0]
		cursorID = parts[1]
	}

	// Count total products.
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, err
	}

	// Fetch limit+1 rows to determine hasMore.
	var rows *sql.Rows
	if cursorTitle == "" && cursorID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+productColumns+` FROM products
			ORDER BY title ASC, id ASC
			LIMIT ?`, params.Limit+1)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+productColumns+` FROM products
			WHERE (title > ? OR (title = ? AND id > ?))
			ORDER BY title ASC, id ASC
			LIMIT ?`, cursorTitle, cursorTitle, cursorID, params.Limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Determine pagination.
	hasMore := len(products) > params.Limit
	if hasMore {
		products = products[:params.Limit]
	}

	// Build next cursor.
	var nextCursor string
	if hasMore && len(products) > 0 {
		last := products[len(products)-1]
		nextCursor = store.EncodeCursor(last.Title + "|" + last.ID)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return &store.PaginatedResult[*domain.Product]{
		Items:      products,
		Total:      total,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}

// ListProductsByCategory returns a category's products ordered by title.
func (s *Store) ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category_id = ? ORDER BY title ASC`,
		categoryID)
}

// ListAllProducts returns every product ordered by title. Used for search
// reindexing; catalog reads should prefer the paginated ListProducts.
func (s *Store) ListAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY title ASC`)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}
