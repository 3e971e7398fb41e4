// Package catalog serves the storefront's product inventory: a JSON fixture
// loaded at startup and filtered per request.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Product is one storefront listing.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Gender      string   `json:"gender,omitempty"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Sizes       []string `json:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Catalog holds the loaded inventory.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
}

// LoadFile reads the product fixture at path. A missing or malformed file
// yields an empty catalog, not an error: the storefront stays up with no
// listings, matching the original backend's behavior.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Catalog{}, fmt.Errorf("read product fixture: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return &Catalog{}, fmt.Errorf("decode product fixture: %w", err)
	}

	return New(products), nil
}

// New builds a catalog over the supplied products.
func New(products []Product) *Catalog {
	return &Catalog{products: append([]Product(nil), products...)}
}

// Len returns the number of loaded products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Query carries the facet filters of a product search. Zero values mean
// "no constraint".
type Query struct {
	Text      string
	Category  string
	Gender    string
	Brand     string
	Sizes     []string
	Colors    []string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

// Filter returns the products matching every constraint in q, preserving
// catalog order.
func (c *Catalog) Filter(q Query) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Product, q Query) bool {
	if q.Text != "" {
		text := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(p.Name), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) &&
			!strings.Contains(strings.ToLower(p.Brand), text) &&
			!strings.Contains(strings.ToLower(p.Category), text) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Gender != "" && !strings.EqualFold(p.Gender, q.Gender) {
		return false
	}
	if q.Brand != "" && !strings.EqualFold(p.Brand, q.Brand) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.MinRating != nil && p.Rating < *q.MinRating {
		return false
	}
	if len(q.Sizes) > 0 && !overlaps(p.Sizes, q.Sizes) {
		return false
	}
	if len(q.Colors) > 0 && !overlaps(p.Colors, q.Colors) {
		return false
	}
	return true
}

// overlaps reports whether any wanted value appears in have, case-insensitively.
func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// Summary renders a compact inventory overview for the assistant's system
// prompt: distinct categories and brands plus the catalog size.
func (c *Catalog) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.products) == 0 {
		return "The catalog is currently empty."
	}

	categories := distinct(c.products, func(p Product) string { return p.Category })
	brands := distinct(c.products, func(p Product) string { return p.Brand })

	return fmt.Sprintf("The store carries %d products across categories [%s] from brands [%s].",
		len(c.products), strings.Join(categories, ", "), strings.Join(brands, ", "))
}

func distinct(products []Product, field func(Product) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(v)]; ok {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		out = append(out, v)
	}
	return out
}
