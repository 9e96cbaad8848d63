package catalog

import "fmt"

// MinPriceAmount is the smallest price a variation may carry.
const MinPriceAmount = 0.01

// CellError describes one invalid staged cell.
type CellError struct {
	VariationID string `json:"variation_id"`
	ProductID   string `json:"product_id"`
	Field       string `json:"field"`
	Message     string `json:"message"`
}

func (c CellError) Error() string {
	return fmt.Sprintf("%s %s: %s", c.Field, c.VariationID, c.Message)
}

// HasPriceError reports whether any staged price is cleared or below the
// minimum. Either condition blocks submission.
func (e *EditSet) HasPriceError() bool {
	for _, p := range e.prices {
		if p.Amount == nil || *p.Amount < MinPriceAmount {
			return true
		}
	}
	return false
}

// HasInventoryError reports whether any staged stock count is negative.
// Cleared inventory cells are fine: clearing means "no override".
func (e *EditSet) HasInventoryError() bool {
	for _, inv := range e.inventories {
		if inv.Count != nil && *inv.Count < 0 {
			return true
		}
	}
	return false
}

// Errors lists every invalid staged cell, for surfacing inline.
func (e *EditSet) Errors() []CellError {
	var errs []CellError
	for id, p := range e.prices {
		switch {
		case p.Amount == nil:
			errs = append(errs, CellError{
				VariationID: id, ProductID: p.ProductID, Field: "price",
				Message: "price is required",
			})
		case *p.Amount < MinPriceAmount:
			errs = append(errs, CellError{
				VariationID: id, ProductID: p.ProductID, Field: "price",
				Message: fmt.Sprintf("price must be at least %.2f", MinPriceAmount),
			})
		}
	}
	for id, inv := range e.inventories {
		if inv.Count != nil && *inv.Count < 0 {
			errs = append(errs, CellError{
				VariationID: id, ProductID: inv.ProductID, Field: "inventory",
				Message: "inventory cannot be negative",
			})
		}
	}
	return errs
}

// CanSubmit reports whether the set is non-empty and free of invalid cells.
func (e *EditSet) CanSubmit() bool {
	return e.Count() > 0 && !e.HasPriceError() && !e.HasInventoryError()
}
