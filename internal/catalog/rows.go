package catalog

// CollapsedVariationsShown is how many variation rows render under a product
// before the remainder collapses behind an expand row.
const CollapsedVariationsShown = 5

// RowKind tags the concrete type of a table row.
type RowKind string

const (
	RowKindProduct   RowKind = "PRODUCT"
	RowKindVariation RowKind = "VARIATION"
	RowKindExpand    RowKind = "VARIATION_EXPAND_ROW"
)

// Row is one rendered line of the catalog table. Exactly three concrete
// types implement it: ProductRow, VariationRow, and ExpandRow. Renderers
// must switch over all three.
type Row interface {
	Kind() RowKind
	// RowID is unique across the whole row list and stable across rebuilds.
	RowID() string
}

// ProductRow is the summary line for a product. For products with real
// variations it carries grouped price and inventory ranges; for single-SKU
// products it carries the editable cells directly.
type ProductRow struct {
	Product *Product
}

func (r ProductRow) Kind() RowKind { return RowKindProduct }
func (r ProductRow) RowID() string { return r.Product.ID }

// VariationRow is one visible variation rendered under its product row.
type VariationRow struct {
	Product   *Product
	Variation *Variation
}

func (r VariationRow) Kind() RowKind { return RowKindVariation }
func (r VariationRow) RowID() string { return r.Product.ID + "/" + r.Variation.ID }

// ExpandRow is the "show all N variations" control under a product whose
// variation count exceeds the collapsed limit.
type ExpandRow struct {
	ProductID      string
	VariationCount int
	Expanded       bool
	Loading        bool
}

func (r ExpandRow) Kind() RowKind { return RowKindExpand }
func (r ExpandRow) RowID() string { return r.ProductID + "/expand" }

// expandState reports a product's expansion status to the row builder.
type expandState interface {
	isExpanded(productID string) bool
	isLoading(productID string) bool
}

// noExpansion renders every product collapsed.
type noExpansion struct{}

func (noExpansion) isExpanded(string) bool { return false }
func (noExpansion) isLoading(string) bool  { return false }

// buildRows flattens the current product page into the ordered row list.
//
// Products with zero variations are skipped outright: there is nothing to
// price or stock. Products without real variations render as a single
// product row whose cells edit the default variation. Products with real
// variations render a product row, their visible variations capped at
// collapsed (all of them when expanded), and an expand row when the total
// exceeds the cap.
func buildRows(products []*Product, exp expandState, collapsed int) []Row {
	if collapsed <= 0 {
		collapsed = CollapsedVariationsShown
	}
	var rows []Row
	for _, p := range products {
		if len(p.Variations) == 0 {
			continue
		}
		rows = append(rows, ProductRow{Product: p})
		if !p.HasVariations() {
			continue
		}
		expanded := exp.isExpanded(p.ID)
		visible := p.Variations
		if !expanded && len(visible) > collapsed {
			visible = visible[:collapsed]
		}
		for _, v := range visible {
			rows = append(rows, VariationRow{Product: p, Variation: v})
		}
		if p.VariationCount > collapsed {
			rows = append(rows, ExpandRow{
				ProductID:      p.ID,
				VariationCount: p.VariationCount,
				Expanded:       expanded,
				Loading:        exp.isLoading(p.ID),
			})
		}
	}
	return rows
}
