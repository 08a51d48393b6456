// Package main provides a tool to seed the database with a demo catalog.
//
// This creates a small catalog hierarchy with brands and products, and
// optionally a shopping list referencing them, so clients have data to
// browse against a fresh server.
//
// Usage:
//
//	DB_PATH=~/atoum/atoum.db go run ./cmd/seed
//	DB_PATH=~/atoum/atoum.db go run ./cmd/seed --with-shopping
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/id"
	"github.com/atoumapp/atoum-server/internal/store/sqlite"
	"github.com/atoumapp/atoum-server/internal/util"
)

var withShopping = flag.Bool("with-shopping", false, "Also create a demo shopping list")

// demoCatalog is consumable -> assortment -> category -> products.
var demoCatalog = map[string]map[string]map[string][]string{
	"Food": {
		"Fresh products": {
			"Cheese": {"Comte", "Brie", "Camembert"},
			"Fruits": {"Apples", "Bananas"},
		},
		"Pantry": {
			"Pasta": {"Spaghetti", "Penne"},
			"Rice":  {"Basmati rice"},
		},
	},
	"Hygiene": {
		"Bathroom": {
			"Soap": {"Hand soap", "Shower gel"},
		},
	},
}

var demoBrands = []string{"Old Mill", "Green Valley"}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/atoum/atoum.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()

	brandIDs := make([]string, 0, len(demoBrands))
	for _, title := range demoBrands {
		brand := &domain.Brand{
			ID:        id.MustGenerate("brd"),
			Title:     title,
			Slug:      util.Slugify(title),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateBrand(ctx, brand); err != nil {
			log.Fatalf("Failed to create brand %q: %v", title, err)
		}
		brandIDs = append(brandIDs, brand.ID)
		fmt.Printf("Created brand: %s\n", title)
	}

	var productIDs []string
	productCount := 0
	for consumableTitle, assortments := range demoCatalog {
		consumable := &domain.Consumable{
			ID:        id.MustGenerate("con"),
			Title:     consumableTitle,
			Slug:      util.Slugify(consumableTitle),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateConsumable(ctx, consumable); err != nil {
			log.Fatalf("Failed to create consumable %q: %v", consumableTitle, err)
		}

		for assortmentTitle, categories := range assortments {
			assortment := &domain.Assortment{
				ID:           id.MustGenerate("ast"),
				ConsumableID: consumable.ID,
				Title:        assortmentTitle,
				Slug:         util.Slugify(assortmentTitle),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.CreateAssortment(ctx, assortment); err != nil {
				log.Fatalf("Failed to create assortment %q: %v", assortmentTitle, err)
			}

			for categoryTitle, products := range categories {
				category := &domain.Category{
					ID:           id.MustGenerate("cat"),
					AssortmentID: assortment.ID,
					Title:        categoryTitle,
					Slug:         util.Slugify(categoryTitle),
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := s.CreateCategory(ctx, category); err != nil {
					log.Fatalf("Failed to create category %q: %v", categoryTitle, err)
				}

				for i, productTitle := range products {
					product := &domain.Product{
						ID:         id.MustGenerate("prd"),
						CategoryID: category.ID,
						Title:      productTitle,
						Slug:       util.Slugify(productTitle),
						CreatedAt:  now,
						UpdatedAt:  now,
					}
					// Spread brands over some of the products.
					if i%2 == 0 {
						product.BrandID = brandIDs[productCount%len(brandIDs)]
					}
					if err := s.CreateProduct(ctx, product); err != nil {
						log.Fatalf("Failed to create product %q: %v", productTitle, err)
					}
					productIDs = append(productIDs, product.ID)
					productCount++
				}
			}
		}
		fmt.Printf("Created consumable: %s\n", consumableTitle)
	}

	fmt.Printf("Seeded %d products\n", productCount)

	if *withShopping {
		shopping := &domain.Shopping{
			ID:        id.MustGenerate("shp"),
			Title:     "Demo groceries",
			Planning:  now.AddDate(0, 0, 1),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateShopping(ctx, shopping); err != nil {
			log.Fatalf("Failed to create shopping list: %v", err)
		}

		limit := 4
		if len(productIDs) < limit {
			limit = len(productIDs)
		}
		for i := 0; i < limit; i++ {
			item := &domain.ShoppingItem{
				ID:         id.MustGenerate("item"),
				ShoppingID: shopping.ID,
				ProductID:  productIDs[i],
				Quantity:   i + 1,
				CreatedAt:  now,
			}
			if _, err := s.CreateShoppingItem(ctx, item); err != nil {
				log.Fatalf("Failed to create shopping item: %v", err)
			}
		}
		fmt.Printf("Created shopping list %q with %d items\n", shopping.Title, limit)
	}

	fmt.Println("Done. The server indexes the catalog on next start.")
}
