package catalog

// PendingPrice is a staged price override for one variation. A nil Amount
// means the merchant cleared the cell; it blocks submission until filled in.
type PendingPrice struct {
	ProductID string
	Amount    *float64
}

// PendingInventory is a staged stock override for one variation in the
// session's warehouse. A nil Count means the cell was cleared, which is
// "no override" rather than an error.
type PendingInventory struct {
	ProductID string
	Count     *int
}

type pendingProductEnabled struct {
	hasVariations bool
	enabled       bool
}

type pendingVariationEnabled struct {
	productID string
	enabled   bool
}

// EditSet is the pending-edit cache: every staged change the merchant has
// made but not yet submitted, keyed by variation or product id. Entries are
// diffs against the server values the session was holding when the edit was
// staged; an edit that lands back on the server value evicts its entry, so
// an empty set always means "nothing to submit".
//
// EditSet is not safe for concurrent use; the owning Session serializes
// access.
type EditSet struct {
	prices           map[string]PendingPrice
	inventories      map[string]PendingInventory
	productEnabled   map[string]pendingProductEnabled
	variationEnabled map[string]pendingVariationEnabled
}

// NewEditSet returns an empty cache.
func NewEditSet() *EditSet {
	e := &EditSet{}
	e.Clear()
	return e
}

// Clear drops every staged change.
func (e *EditSet) Clear() {
	e.prices = make(map[string]PendingPrice)
	e.inventories = make(map[string]PendingInventory)
	e.productEnabled = make(map[string]pendingProductEnabled)
	e.variationEnabled = make(map[string]pendingVariationEnabled)
}

// Count returns the number of staged entries across all four maps. This is
// the "N changes" figure the submit control shows.
func (e *EditSet) Count() int {
	return len(e.prices) + len(e.inventories) + len(e.productEnabled) + len(e.variationEnabled)
}

// ============================================================================
// Price and inventory
// ============================================================================

// SetPrice stages a price override for the variation. Setting the amount
// back to the server price evicts the entry instead of storing a no-op.
func (e *EditSet) SetPrice(v *Variation, amount *float64) {
	if amount != nil && *amount == v.Price.Amount {
		delete(e.prices, v.ID)
		return
	}
	e.prices[v.ID] = PendingPrice{ProductID: v.ProductID, Amount: amount}
}

// SetInventory stages a stock override for the variation in the given
// warehouse. Setting the count back to the server value evicts the entry.
func (e *EditSet) SetInventory(v *Variation, warehouseID string, count *int) {
	if count != nil && *count == v.InventoryAt(warehouseID) {
		delete(e.inventories, v.ID)
		return
	}
	e.inventories[v.ID] = PendingInventory{ProductID: v.ProductID, Count: count}
}

// PendingPrice returns the staged price entry for a variation, if any.
func (e *EditSet) PendingPrice(variationID string) (PendingPrice, bool) {
	p, ok := e.prices[variationID]
	return p, ok
}

// PendingInventory returns the staged inventory entry for a variation, if any.
func (e *EditSet) PendingInventory(variationID string) (PendingInventory, bool) {
	inv, ok := e.inventories[variationID]
	return inv, ok
}

// ============================================================================
// Enable / disable cascades
// ============================================================================

// EnableProduct stages the product on and cascades to its fetched
// variations: a product cannot sell unless its variations do.
func (e *EditSet) EnableProduct(p *Product) {
	e.enableProduct(p, false)
}

// DisableProduct stages the product off and cascades to its fetched
// variations.
func (e *EditSet) DisableProduct(p *Product) {
	e.disableProduct(p, false)
}

func (e *EditSet) enableProduct(p *Product, skipVariations bool) {
	if p.HasVariations() && !skipVariations {
		for _, v := range p.Variations {
			e.enableVariation(p, v)
		}
	}
	if p.Enabled {
		delete(e.productEnabled, p.ID)
		return
	}
	e.productEnabled[p.ID] = pendingProductEnabled{hasVariations: p.HasVariations(), enabled: true}
}

func (e *EditSet) disableProduct(p *Product, skipVariations bool) {
	if p.HasVariations() && !skipVariations {
		for _, v := range p.Variations {
			e.disableVariation(p, v)
		}
	}
	if !p.Enabled {
		delete(e.productEnabled, p.ID)
		return
	}
	e.productEnabled[p.ID] = pendingProductEnabled{hasVariations: p.HasVariations(), enabled: false}
}

// EnableVariation stages the variation on. When every sibling is already
// effectively enabled the product follows, since all of its variations are
// now on.
func (e *EditSet) EnableVariation(p *Product, v *Variation) {
	e.enableVariation(p, v)
}

// DisableVariation stages the variation off. The product follows
// immediately: a product with any variation off is not fully enabled.
func (e *EditSet) DisableVariation(p *Product, v *Variation) {
	e.disableVariation(p, v)
}

func (e *EditSet) enableVariation(p *Product, v *Variation) {
	siblingsOn := true
	for _, sib := range p.Variations {
		if sib.ID == v.ID {
			continue
		}
		if !e.VariationEnabled(sib) {
			siblingsOn = false
			break
		}
	}
	if siblingsOn {
		e.enableProduct(p, true)
	}
	if v.Enabled {
		delete(e.variationEnabled, v.ID)
		return
	}
	e.variationEnabled[v.ID] = pendingVariationEnabled{productID: v.ProductID, enabled: true}
}

func (e *EditSet) disableVariation(p *Product, v *Variation) {
	e.disableProduct(p, true)
	if !v.Enabled {
		delete(e.variationEnabled, v.ID)
		return
	}
	e.variationEnabled[v.ID] = pendingVariationEnabled{productID: v.ProductID, enabled: false}
}

// ProductEnabled returns the product's effective enabled state: the staged
// override when one exists, the server state otherwise.
func (e *EditSet) ProductEnabled(p *Product) bool {
	if ov, ok := e.productEnabled[p.ID]; ok {
		return ov.enabled
	}
	return p.Enabled
}

// VariationEnabled returns the variation's effective enabled state.
func (e *EditSet) VariationEnabled(v *Variation) bool {
	if ov, ok := e.variationEnabled[v.ID]; ok {
		return ov.enabled
	}
	return v.Enabled
}
