package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// exportHeader is the column layout of a catalog export. One row per
// variation, with the parent product's columns repeated.
var exportHeader = []string{
	"Product ID",
	"Product Name",
	"Parent SKU",
	"Listing State",
	"Product Enabled",
	"Badges",
	"Sales",
	"Wishes",
	"Variation ID",
	"SKU",
	"Color",
	"Size",
	"Variation Enabled",
	"Price",
	"Currency",
	"Inventory",
	"Last Updated",
	"Date Added",
}

// WriteCSV streams products as CSV, one row per variation, scoped to the
// given warehouse's inventory counts.
func WriteCSV(w io.Writer, warehouseID string, products []*Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, p := range products {
		badges := make([]string, 0, 5)
		for _, b := range p.Badges() {
			badges = append(badges, string(b))
		}
		for _, v := range p.Variations {
			rec := []string{
				p.ID,
				p.Name,
				p.SKU,
				string(p.ListingState),
				strconv.FormatBool(p.Enabled),
				strings.Join(badges, ";"),
				strconv.Itoa(p.Sales),
				strconv.Itoa(p.Wishes),
				v.ID,
				v.SKU,
				strOrEmpty(v.Color),
				strOrEmpty(v.Size),
				strconv.FormatBool(v.Enabled),
				fmt.Sprintf("%.2f", v.Price.Amount),
				v.Price.Currency,
				strconv.Itoa(v.InventoryAt(warehouseID)),
				p.LastUpdated.Format(time.RFC3339),
				p.Created.Format(time.RFC3339),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write export row for product %s: %w", p.ID, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
