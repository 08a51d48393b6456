// Package search provides full-text search functionality using Bleve.
// It enables federated search across the catalog hierarchy (consumables,
// assortments, categories, products) and brands with fuzzy matching and
// faceted filtering by entity type.
package search

import (
	"strings"

	"github.com/atoumapp/atoum-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeConsumable DocType = "consumable"
	DocTypeAssortment DocType = "assortment"
	DocTypeCategory   DocType = "category"
	DocTypeProduct    DocType = "product"
	DocTypeBrand      DocType = "brand"
)

// SearchDocument is the unified document structure for the Bleve index.
// All searchable entities are indexed as SearchDocuments with type discrimination.
//
// Ancestry names are denormalized into product and category documents so a
// single query can match "cheese" against both the category itself and every
// product filed under it, without touching the database at query time.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`   // Original entity ID (prd_xxx, cat_xxx, etc.)
	Type DocType `json:"type"` // Discriminator for result grouping

	// Primary searchable text: the entity title.
	Name string `json:"name"`

	// Slug for exact matching and display.
	Slug string `json:"slug"`

	// Product-specific fields (empty for other types)
	Brand     string `json:"brand,omitempty"`      // Denormalized brand title
	BrandSlug string `json:"brand_slug,omitempty"` // For exact brand filtering
	Category  string `json:"category,omitempty"`   // Denormalized parent category title

	// Denormalized ancestor titles, searchable.
	// Product: "Food Fresh products Cheese", Category: "Food Fresh products".
	Ancestry string `json:"ancestry,omitempty"`

	// Slash-joined ancestor slugs for hierarchical filtering.
	// e.g. "/food/fresh-products/cheese" on a product document.
	AncestryPath string `json:"ancestry_path,omitempty"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"slug":       d.Slug,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	if d.BrandSlug != "" {
		m["brand_slug"] = d.BrandSlug
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Ancestry != "" {
		m["ancestry"] = d.Ancestry
	}
	if d.AncestryPath != "" {
		m["ancestry_path"] = d.AncestryPath
	}

	return m
}

// ConsumableToSearchDocument converts a domain Consumable to a SearchDocument.
func ConsumableToSearchDocument(c *domain.Consumable) *SearchDocument {
	return &SearchDocument{
		ID:        c.ID,
		Type:      DocTypeConsumable,
		Name:      c.Title,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

// AssortmentToSearchDocument converts a domain Assortment to a SearchDocument.
// The parent consumable is provided by the caller, as the search package
// shouldn't depend on store.
func AssortmentToSearchDocument(a *domain.Assortment, consumable *domain.Consumable) *SearchDocument {
	return &SearchDocument{
		ID:           a.ID,
		Type:         DocTypeAssortment,
		Name:         a.Title,
		Slug:         a.Slug,
		Ancestry:     consumable.Title,
		AncestryPath: "/" + consumable.Slug,
		CreatedAt:    a.CreatedAt.UnixMilli(),
		UpdatedAt:    a.UpdatedAt.UnixMilli(),
	}
}

// CategoryToSearchDocument converts a domain Category to a SearchDocument.
func CategoryToSearchDocument(c *domain.Category, assortment *domain.Assortment, consumable *domain.Consumable) *SearchDocument {
	return &SearchDocument{
		ID:           c.ID,
		Type:         DocTypeCategory,
		Name:         c.Title,
		Slug:         c.Slug,
		Ancestry:     consumable.Title + " " + assortment.Title,
		AncestryPath: "/" + consumable.Slug + "/" + assortment.Slug,
		CreatedAt:    c.CreatedAt.UnixMilli(),
		UpdatedAt:    c.UpdatedAt.UnixMilli(),
	}
}

// BrandToSearchDocument converts a domain Brand to a SearchDocument.
func BrandToSearchDocument(b *domain.Brand) *SearchDocument {
	return &SearchDocument{
		ID:        b.ID,
		Type:      DocTypeBrand,
		Name:      b.Title,
		Slug:      b.Slug,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
	}
}

// ProductToSearchDocument converts a resolved product hierarchy to a SearchDocument.
func ProductToSearchDocument(h *domain.ProductHierarchy) *SearchDocument {
	doc := &SearchDocument{
		ID:       h.Product.ID,
		Type:     DocTypeProduct,
		Name:     h.Product.Title,
		Slug:     h.Product.Slug,
		Category: h.Category.Title,
		Ancestry: strings.Join([]string{
			h.Consumable.Title, h.Assortment.Title, h.Category.Title,
		}, " "),
		AncestryPath: "/" + h.Consumable.Slug + "/" + h.Assortment.Slug + "/" + h.Category.Slug,
		CreatedAt:    h.Product.CreatedAt.UnixMilli(),
		UpdatedAt:    h.Product.UpdatedAt.UnixMilli(),
	}

	if h.Brand != nil {
		doc.Brand = h.Brand.Title
		doc.BrandSlug = h.Brand.Slug
	}

	return doc
}
