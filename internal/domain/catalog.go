// Package domain contains the core entities and business rules of the
// catalog and shopping system, free of storage and transport concerns.
package domain

import "time"

// Consumable is the root level of the catalog hierarchy.
// Example: "Food", "Hygiene".
type Consumable struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
}

// Assortment is the second level of the catalog hierarchy and belongs to
// exactly one Consumable. Example: "Fresh products" under "Food".
type Assortment struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	ConsumableID string    `json:"consumable_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
}

// Category is the third level of the catalog hierarchy and belongs to
// exactly one Assortment. Titles and slugs are unique within their
// assortment, not globally.
type Category struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	AssortmentID string    `json:"assortment_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
}

// Brand identifies a product manufacturer or label.
type Brand struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Cover     string    `json:"cover,omitempty"` // Optional image path
}

// Product is the leaf of the catalog hierarchy. It belongs to exactly one
// Category and optionally references a Brand.
type Product struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	BrandID     string    `json:"brand_id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"` // Optional image path
}

// ProductHierarchy is a read-only projection of a product with its full
// ancestry resolved (category, assortment, consumable, and brand when set).
// Loaded in one pass so callers never chase references per product.
type ProductHierarchy struct {
	Product    Product    `json:"product"`
	Category   Category   `json:"category"`
	Assortment Assortment `json:"assortment"`
	Consumable Consumable `json:"consumable"`
	Brand      *Brand     `json:"brand,omitempty"`
}

// Path returns the human-readable ancestry path of the product,
// e.g. "Food / Fresh products / Cheese / Comté".
func (h *ProductHierarchy) Path() string {
	return h.Consumable.Title + " / " + h.Assortment.Title + " / " +
		h.Category.Title + " / " + h.Product.Title
}

// Touch updates the entity's UpdatedAt timestamp. Timestamps are set
// explicitly at mutation sites, never by storage-layer side effects.
func (c *Consumable) Touch() { c.UpdatedAt = time.Now() }

// Touch updates the entity's UpdatedAt timestamp.
func (a *Assortment) Touch() { a.UpdatedAt = time.Now() }

// Touch updates the entity's UpdatedAt timestamp.
func (c *Category) Touch() { c.UpdatedAt = time.Now() }

// Touch updates the entity's UpdatedAt timestamp.
func (b *Brand) Touch() { b.UpdatedAt = time.Now() }

// Touch updates the entity's UpdatedAt timestamp.
func (p *Product) Touch() { p.UpdatedAt = time.Now() }
