package catalog

// View is what a renderer needs to draw the whole screen: the flattened
// rows with edits overlaid, the counts, and the submit control state. It
// is assembled under the session lock so every field describes the same
// instant.
type View struct {
	Rows            []RowView   `json:"rows"`
	Count           int         `json:"count"`
	TotalCount      int         `json:"total_count"`
	HasMore         bool        `json:"has_more"`
	Offset          int         `json:"offset"`
	Limit           int         `json:"limit"`
	NumberOfChanges int         `json:"number_of_changes"`
	CanSubmit       bool        `json:"can_submit"`
	Submitting      bool        `json:"submitting"`
	FiltersEnabled  bool        `json:"filters_enabled"`
	CellErrors      []CellError `json:"cell_errors,omitempty"`
}

// RowView is one rendered row. Kind selects which of the three field sets
// is populated.
type RowView struct {
	Kind  RowKind `json:"kind"`
	RowID string  `json:"row_id"`

	// Product and variation rows.
	ProductID string `json:"product_id,omitempty"`

	// Product rows.
	Name           string       `json:"name,omitempty"`
	SKU            string       `json:"sku,omitempty"`
	ListingState   ListingState `json:"listing_state,omitempty"`
	Badges         []Badge      `json:"badges,omitempty"`
	Sales          int          `json:"sales,omitempty"`
	Wishes         int          `json:"wishes,omitempty"`
	PriceRange     string       `json:"price_range,omitempty"`
	InventoryRange string       `json:"inventory_range,omitempty"`
	ReadOnly       bool         `json:"read_only,omitempty"`

	// Variation rows, and product rows of single-SKU products.
	VariationID string `json:"variation_id,omitempty"`
	Label       string `json:"label,omitempty"`
	Price       *Money `json:"price,omitempty"`
	Inventory   *int   `json:"inventory,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
	Editable    bool   `json:"editable,omitempty"`

	// Expand rows.
	VariationCount int  `json:"variation_count,omitempty"`
	Expanded       bool `json:"expanded,omitempty"`
	Loading        bool `json:"loading,omitempty"`
}

// View renders the current session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := buildRows(s.products, expandView{expanded: s.expanded, loads: s.loads}, s.collapsed)
	out := View{
		Rows:            make([]RowView, 0, len(rows)),
		Count:           s.count,
		TotalCount:      s.totalCount,
		HasMore:         s.hasMore,
		Offset:          s.query.offset,
		Limit:           s.query.limit,
		NumberOfChanges: s.edits.Count(),
		CanSubmit:       !s.submitting && s.edits.CanSubmit(),
		Submitting:      s.submitting,
		FiltersEnabled:  s.query.filtersEnabled(),
		CellErrors:      s.edits.Errors(),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, s.renderRowLocked(r))
	}
	return out
}

func (s *Session) renderRowLocked(r Row) RowView {
	switch row := r.(type) {
	case ProductRow:
		return s.renderProductRowLocked(row.Product)
	case VariationRow:
		return s.renderVariationRowLocked(row.Product, row.Variation)
	case ExpandRow:
		return RowView{
			Kind:           RowKindExpand,
			RowID:          row.RowID(),
			ProductID:      row.ProductID,
			VariationCount: row.VariationCount,
			Expanded:       row.Expanded,
			Loading:        row.Loading,
		}
	}
	// buildRows only emits the three kinds above.
	return RowView{}
}

func (s *Session) renderProductRowLocked(p *Product) RowView {
	rv := RowView{
		Kind:         RowKindProduct,
		RowID:        p.ID,
		ProductID:    p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		ListingState: p.ListingState,
		Badges:       p.Badges(),
		Sales:        p.Sales,
		Wishes:       p.Wishes,
		ReadOnly:     p.ListingState.Removed(),
	}
	enabled := s.edits.ProductEnabled(p)
	rv.Enabled = &enabled
	if p.HasVariations() {
		rv.PriceRange = PriceRange(p)
		rv.InventoryRange = InventoryRange(p, s.warehouse.ID)
		return rv
	}
	// Single-SKU product: the product row carries the default variation's
	// editable cells.
	v := p.Variations[0]
	rv.VariationID = v.ID
	rv.Price = s.edits.EffectivePrice(v)
	rv.Inventory = s.edits.EffectiveInventory(v, s.warehouse.ID)
	rv.Editable = !p.ListingState.Removed() && !s.submitting
	return rv
}

func (s *Session) renderVariationRowLocked(p *Product, v *Variation) RowView {
	enabled := s.edits.VariationEnabled(v)
	return RowView{
		Kind:        RowKindVariation,
		RowID:       p.ID + "/" + v.ID,
		ProductID:   p.ID,
		VariationID: v.ID,
		SKU:         v.SKU,
		Label:       v.Label(),
		Price:       s.edits.EffectivePrice(v),
		Inventory:   s.edits.EffectiveInventory(v, s.warehouse.ID),
		Enabled:     &enabled,
		ReadOnly:    p.ListingState.Removed(),
		Editable:    !p.ListingState.Removed() && !s.submitting,
	}
}
