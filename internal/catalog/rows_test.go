package catalog

import "testing"

// ============================================================================
// Test Fixtures
// ============================================================================

func strPtr(s string) *string { return &s }

// makeVariation builds a variation with stock in warehouse "wh-1".
func makeVariation(id, productID string, amount float64, stock int) *Variation {
	return &Variation{
		ID:        id,
		ProductID: productID,
		SKU:       "sku-" + id,
		Color:     strPtr("Blue"),
		Enabled:   true,
		Price:     Money{Amount: amount, Currency: "USD"},
		Inventory: []StockLevel{{WarehouseID: "wh-1", Count: stock}},
	}
}

// makeProduct builds an enabled, active product with n variations, all
// fetched.
func makeProduct(id string, n int) *Product {
	p := &Product{
		ID:             id,
		Name:           "Product " + id,
		SKU:            "parent-" + id,
		Enabled:        true,
		ListingState:   StateActive,
		VariationCount: n,
	}
	for i := 0; i < n; i++ {
		p.Variations = append(p.Variations, makeVariation(id+"-v"+string(rune('a'+i)), id, 10, 5))
	}
	return p
}

// makeSingleSKU builds a product whose only variation is the default one.
func makeSingleSKU(id string) *Product {
	p := makeProduct(id, 1)
	p.Variations[0].Color = nil
	p.Variations[0].Size = nil
	p.Variations[0].Options = nil
	return p
}

// ============================================================================
// Row Building Tests
// ============================================================================

func kinds(rows []Row) []RowKind {
	out := make([]RowKind, len(rows))
	for i, r := range rows {
		out[i] = r.Kind()
	}
	return out
}

func TestBuildRows(t *testing.T) {
	tests := []struct {
		name     string
		products []*Product
		expanded map[string]bool
		want     []RowKind
	}{
		{
			name:     "zero variations skipped",
			products: []*Product{makeProduct("p1", 0)},
			want:     nil,
		},
		{
			name:     "single sku renders one row",
			products: []*Product{makeSingleSKU("p1")},
			want:     []RowKind{RowKindProduct},
		},
		{
			name:     "small group renders without expand row",
			products: []*Product{makeProduct("p1", 3)},
			want: []RowKind{
				RowKindProduct,
				RowKindVariation, RowKindVariation, RowKindVariation,
			},
		},
		{
			name:     "exactly at cap renders without expand row",
			products: []*Product{makeProduct("p1", 5)},
			want: []RowKind{
				RowKindProduct,
				RowKindVariation, RowKindVariation, RowKindVariation, RowKindVariation, RowKindVariation,
			},
		},
		{
			name:     "over cap collapses and adds expand row",
			products: []*Product{makeProduct("p1", 7)},
			want: []RowKind{
				RowKindProduct,
				RowKindVariation, RowKindVariation, RowKindVariation, RowKindVariation, RowKindVariation,
				RowKindExpand,
			},
		},
		{
			name:     "expanded shows every fetched variation",
			products: []*Product{makeProduct("p1", 7)},
			expanded: map[string]bool{"p1": true},
			want: []RowKind{
				RowKindProduct,
				RowKindVariation, RowKindVariation, RowKindVariation, RowKindVariation,
				RowKindVariation, RowKindVariation, RowKindVariation,
				RowKindExpand,
			},
		},
		{
			name: "mixed page",
			products: []*Product{
				makeProduct("p1", 0),
				makeSingleSKU("p2"),
				makeProduct("p3", 2),
			},
			want: []RowKind{
				RowKindProduct,
				RowKindProduct, RowKindVariation, RowKindVariation,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := expandView{expanded: tt.expanded, loads: nil}
			got := kinds(buildRows(tt.products, exp, CollapsedVariationsShown))
			if len(got) != len(tt.want) {
				t.Fatalf("row kinds = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("row %d = %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestBuildRowsExpandRowState(t *testing.T) {
	p := makeProduct("p1", 8)
	rows := buildRows([]*Product{p}, expandView{
		expanded: map[string]bool{"p1": true},
		loads:    map[string]uint64{"p1": 3},
	}, CollapsedVariationsShown)

	last := rows[len(rows)-1]
	er, ok := last.(ExpandRow)
	if !ok {
		t.Fatalf("last row = %T, want ExpandRow", last)
	}
	if !er.Expanded || !er.Loading {
		t.Errorf("ExpandRow = %+v, want expanded and loading", er)
	}
	if er.VariationCount != 8 {
		t.Errorf("VariationCount = %d, want 8", er.VariationCount)
	}
}

func TestRowIDsUnique(t *testing.T) {
	products := []*Product{makeProduct("p1", 7), makeProduct("p2", 7)}
	rows := buildRows(products, noExpansion{}, CollapsedVariationsShown)

	seen := make(map[string]bool)
	for _, r := range rows {
		if seen[r.RowID()] {
			t.Fatalf("duplicate row id %q", r.RowID())
		}
		seen[r.RowID()] = true
	}
}

func TestHasVariations(t *testing.T) {
	tests := []struct {
		name string
		p    *Product
		want bool
	}{
		{"default-only variation", makeSingleSKU("p1"), false},
		{"single real variation", makeProduct("p1", 1), true},
		{"many variations", makeProduct("p1", 3), true},
		{"no variations", makeProduct("p1", 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.HasVariations(); got != tt.want {
				t.Errorf("HasVariations() = %v, want %v", got, tt.want)
			}
		})
	}
}
