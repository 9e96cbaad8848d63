// Package catalog implements the merchant catalog table engine: query
// derivation for the product listing, the pending-edit cache with its
// enable/disable cascades, lazy variation expansion, and batch submission
// of staged changes.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// Listing state
// ============================================================================

// ListingState describes where a product listing stands in its lifecycle.
type ListingState string

const (
	StateActive            ListingState = "ACTIVE"
	StateMerchantInactive  ListingState = "MERCHANT_INACTIVE"
	StatePlatformInactive  ListingState = "PLATFORM_INACTIVE"
	StateRemovedByMerchant ListingState = "REMOVED_BY_MERCHANT"
	StateRemovedByPlatform ListingState = "REMOVED_BY_PLATFORM"
)

// Removed reports whether the listing has been taken down. Removed listings
// are read-only: they render, but accept no staged edits.
func (s ListingState) Removed() bool {
	return s == StateRemovedByMerchant || s == StateRemovedByPlatform
}

// Valid reports whether s is one of the known listing states.
func (s ListingState) Valid() bool {
	switch s {
	case StateActive, StateMerchantInactive, StatePlatformInactive,
		StateRemovedByMerchant, StateRemovedByPlatform:
		return true
	}
	return false
}

// ============================================================================
// Money
// ============================================================================

// Money is an amount in a single currency. Amounts are merchant-facing
// decimal values, not minor units.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Equal reports whether two amounts are the same value in the same currency.
func (m Money) Equal(o Money) bool {
	return m.Amount == o.Amount && m.Currency == o.Currency
}

// Display renders the amount for table cells, e.g. "9.99 USD".
func (m Money) Display() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

// ============================================================================
// Variations and products
// ============================================================================

// VariationOption is an extra merchant-defined axis beyond color and size.
type VariationOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StockLevel is the on-hand count of a variation in one warehouse.
type StockLevel struct {
	WarehouseID string `json:"warehouse_id"`
	Count       int    `json:"count"`
}

// Variation is a purchasable SKU of a product.
type Variation struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	SKU       string            `json:"sku"`
	Color     *string           `json:"color,omitempty"`
	Size      *string           `json:"size,omitempty"`
	Options   []VariationOption `json:"options,omitempty"`
	Enabled   bool              `json:"enabled"`
	Price     Money             `json:"price"`
	Inventory []StockLevel      `json:"inventory"`
}

// InventoryAt returns the variation's stock count in the given warehouse.
// A warehouse with no stock record counts as zero.
func (v *Variation) InventoryAt(warehouseID string) int {
	for _, s := range v.Inventory {
		if s.WarehouseID == warehouseID {
			return s.Count
		}
	}
	return 0
}

// isDefault reports whether the variation is the placeholder created for a
// product sold without real variations: no color, no size, no extra options.
func (v *Variation) isDefault() bool {
	return v.Color == nil && v.Size == nil && len(v.Options) == 0
}

// Label renders the variation axes for display, e.g. "Blue / M".
func (v *Variation) Label() string {
	var parts []string
	if v.Color != nil {
		parts = append(parts, *v.Color)
	}
	if v.Size != nil {
		parts = append(parts, *v.Size)
	}
	for _, o := range v.Options {
		parts = append(parts, o.Value)
	}
	return strings.Join(parts, " / ")
}

// Product is a catalog listing with its variations. Variations holds only
// the slice fetched so far; VariationCount is the authoritative total.
type Product struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	SKU              string       `json:"sku"`
	Enabled          bool         `json:"enabled"`
	ListingState     ListingState `json:"listing_state"`
	Sales            int          `json:"sales"`
	Wishes           int          `json:"wishes"`
	HasBrand         bool         `json:"has_brand"`
	IsExpressEnabled bool         `json:"is_express_enabled"`
	IsPromoted       bool         `json:"is_promoted"`
	HasCleanImage    bool         `json:"has_clean_image"`
	IsReturnEnrolled bool         `json:"is_return_enrolled"`
	LastUpdated      time.Time    `json:"last_updated"`
	Created          time.Time    `json:"created"`
	VariationCount   int          `json:"variation_count"`
	Variations       []*Variation `json:"variations"`
}

// HasVariations reports whether the product has real variations. A product
// whose only variation is the colorless, sizeless default does not.
func (p *Product) HasVariations() bool {
	if p.VariationCount != 1 || len(p.Variations) != 1 {
		return p.VariationCount > 0
	}
	return !p.Variations[0].isDefault()
}

// Clone deep-copies the product, its variations, and their stock levels.
func (p *Product) Clone() *Product {
	cp := *p
	cp.Variations = make([]*Variation, len(p.Variations))
	for i, v := range p.Variations {
		vc := *v
		vc.Options = append([]VariationOption(nil), v.Options...)
		vc.Inventory = append([]StockLevel(nil), v.Inventory...)
		cp.Variations[i] = &vc
	}
	return &cp
}

// Variation returns the product's variation with the given id, or nil.
func (p *Product) Variation(id string) *Variation {
	for _, v := range p.Variations {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// ============================================================================
// Warehouses and badges
// ============================================================================

// Warehouse is a merchant fulfillment location. Inventory cells and counts
// are always scoped to one selected warehouse.
type Warehouse struct {
	ID          string `json:"id"`
	UnitID      string `json:"unit_id"`
	CountryCode string `json:"country_code"`
	Primary     bool   `json:"primary"`
}

// Badge is a marker rendered next to a product name.
type Badge string

const (
	BadgeBranded        Badge = "BRANDED"
	BadgeExpress        Badge = "EXPRESS"
	BadgePromoted       Badge = "PROMOTED"
	BadgeCleanImage     Badge = "CLEAN_IMAGE"
	BadgeReturnEnrolled Badge = "RETURN_ENROLLED"
)

// Badges derives the display badges from the product's flags, in a fixed
// render order.
func (p *Product) Badges() []Badge {
	var out []Badge
	if p.HasBrand {
		out = append(out, BadgeBranded)
	}
	if p.IsExpressEnabled {
		out = append(out, BadgeExpress)
	}
	if p.IsPromoted {
		out = append(out, BadgePromoted)
	}
	if p.HasCleanImage {
		out = append(out, BadgeCleanImage)
	}
	if p.IsReturnEnrolled {
		out = append(out, BadgeReturnEnrolled)
	}
	return out
}
