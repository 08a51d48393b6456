package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on entity titles with English stemming
//  2. Boosted relevance for brand and ancestry matches on products
//  3. Exact keyword matching for type, slug and brand filters
//  4. Term vectors enabled on key fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	// Create the index mapping
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Create document mapping
	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Brand - searchable, important for product search
	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = en.AnalyzerName
	brandFieldMapping.Store = true
	brandFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("brand", brandFieldMapping)

	// Category - denormalized parent title, searchable
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = en.AnalyzerName
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	// Ancestry - denormalized ancestor titles, searchable but not stored
	ancestryFieldMapping := bleve.NewTextFieldMapping()
	ancestryFieldMapping.Analyzer = en.AnalyzerName
	ancestryFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("ancestry", ancestryFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Slug - exact matching and display
	slugFieldMapping := bleve.NewTextFieldMapping()
	slugFieldMapping.Analyzer = keyword.Name
	slugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("slug", slugFieldMapping)

	// Brand slug - for exact brand filtering and faceting
	brandSlugFieldMapping := bleve.NewTextFieldMapping()
	brandSlugFieldMapping.Analyzer = keyword.Name
	brandSlugFieldMapping.Store = true
	brandSlugFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("brand_slug", brandSlugFieldMapping)

	// Ancestry path - for hierarchical filtering
	// Keyword analyzer for exact prefix matching
	ancestryPathFieldMapping := bleve.NewTextFieldMapping()
	ancestryPathFieldMapping.Analyzer = keyword.Name
	ancestryPathFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("ancestry_path", ancestryPathFieldMapping)

	// --- Numeric fields (sorting) ---

	// Timestamps - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
