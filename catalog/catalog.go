/*
Package catalog loads the read-only vendor catalog and answers
material lookups.

PURPOSE:
  The catalog is an external collaborator of the decision engine: the
  engine consumes its vendor listings as plain input and never loads
  or caches the catalog itself. Lookups are case-insensitive against
  each vendor's category. A miss appends a no_vendors_found audit
  entry listing the available categories so the caller can
  self-correct.

FILE FORMAT:
  {
    "vendors": [
      {
        "id": "badrock",
        "name": "BadRock Cements",
        "category": "cement",
        "price_per_100_bags_inr": 35000,
        "currency": "INR",
        "delivery_days": 5,
        "in_stock": true,
        "notes": "Budget option; standard quality"
      }
    ]
  }
*/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/warp/procurement-engine/procure"
)

// Catalog holds the vendor list loaded once at startup.
type Catalog struct {
	vendors []procure.Vendor
	ledger  procure.Ledger
}

type catalogFile struct {
	Vendors []vendorRecord `json:"vendors"`
}

type vendorRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	PriceINR     int64  `json:"price_per_100_bags_inr"`
	Currency     string `json:"currency"`
	DeliveryDays int    `json:"delivery_days"`
	InStock      bool   `json:"in_stock"`
	Notes        string `json:"notes"`
}

// New builds a catalog from an in-memory vendor list.
func New(vendors []procure.Vendor, ledger procure.Ledger) *Catalog {
	return &Catalog{vendors: vendors, ledger: ledger}
}

// Open reads the catalog file at path. The ledger receives
// no_vendors_found entries on lookup misses; it may not be nil.
func Open(path string, ledger procure.Ledger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	vendors := make([]procure.Vendor, 0, len(file.Vendors))
	for _, r := range file.Vendors {
		vendors = append(vendors, procure.Vendor{
			ID:           r.ID,
			Name:         r.Name,
			Category:     r.Category,
			Price:        procure.Rupees(r.PriceINR),
			Currency:     r.Currency,
			DeliveryDays: r.DeliveryDays,
			InStock:      r.InStock,
			Notes:        r.Notes,
		})
	}

	return &Catalog{vendors: vendors, ledger: ledger}, nil
}

// ListVendors returns every vendor supplying the given material.
// The category match is case-insensitive. A miss yields an empty
// slice, never an error.
func (c *Catalog) ListVendors(ctx context.Context, material string) ([]procure.Vendor, error) {
	needle := strings.ToLower(strings.TrimSpace(material))

	var matched []procure.Vendor
	for _, v := range c.vendors {
		if strings.ToLower(v.Category) == needle {
			matched = append(matched, v)
		}
	}

	if len(matched) == 0 {
		entry := procure.NewAuditEntry(procure.EventNoVendorsFound, "", map[string]any{
			"reason":               fmt.Sprintf("no vendors found for material %q", material),
			"available_categories": c.Categories(),
		})
		if err := c.ledger.Append(ctx, entry); err != nil {
			return nil, &procure.StorageError{Op: "append audit", Err: err}
		}
	}

	return matched, nil
}

// Categories returns the sorted set of catalog categories.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, v := range c.vendors {
		if !seen[v.Category] {
			seen[v.Category] = true
			categories = append(categories, v.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
