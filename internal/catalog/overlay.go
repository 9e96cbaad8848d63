package catalog

import "fmt"

// The overlay computes what each cell should display: the staged value when
// one exists, the server value otherwise. Renderers never look at the edit
// maps directly.

// EffectivePrice returns the price a variation cell displays. Nil means the
// cell is cleared and awaiting input.
func (e *EditSet) EffectivePrice(v *Variation) *Money {
	if p, ok := e.prices[v.ID]; ok {
		if p.Amount == nil {
			return nil
		}
		return &Money{Amount: *p.Amount, Currency: v.Price.Currency}
	}
	m := v.Price
	return &m
}

// EffectiveInventory returns the stock count a variation cell displays for
// the given warehouse. Nil means the cell is cleared.
func (e *EditSet) EffectiveInventory(v *Variation, warehouseID string) *int {
	if inv, ok := e.inventories[v.ID]; ok {
		return inv.Count
	}
	n := v.InventoryAt(warehouseID)
	return &n
}

// ============================================================================
// Grouped ranges
// ============================================================================

// PriceRange renders the product row's price cell for a multi-variation
// product: the single value when all variations agree, "min - max" when
// they differ, empty when no variations are loaded. Server values only;
// staged edits show on the variation rows.
func PriceRange(p *Product) string {
	if len(p.Variations) == 0 {
		return ""
	}
	min, max := p.Variations[0].Price, p.Variations[0].Price
	for _, v := range p.Variations[1:] {
		if v.Price.Amount < min.Amount {
			min = v.Price
		}
		if v.Price.Amount > max.Amount {
			max = v.Price
		}
	}
	if min.Amount == max.Amount {
		return min.Display()
	}
	return fmt.Sprintf("%s - %s", min.Display(), max.Display())
}

// InventoryRange renders the product row's inventory cell across the loaded
// variations for one warehouse.
func InventoryRange(p *Product, warehouseID string) string {
	if len(p.Variations) == 0 {
		return ""
	}
	min := p.Variations[0].InventoryAt(warehouseID)
	max := min
	for _, v := range p.Variations[1:] {
		n := v.InventoryAt(warehouseID)
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d - %d", min, max)
}
