package catalog

import "testing"

// ============================================================================
// Batch Building Tests
// ============================================================================

func TestBuildBatchesPartitions(t *testing.T) {
	e := NewEditSet()
	p := makeProduct("p1", 2)
	p.Variations[0].Enabled = false

	e.SetPrice(p.Variations[0], float64Ptr(15))
	e.SetInventory(p.Variations[1], "wh-1", intPtr(30))
	e.EnableVariation(p, p.Variations[0])

	batches := e.BuildBatches("wh-1", "USD")
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2 (values + enablement)", len(batches))
	}
	values, enable := batches[0], batches[1]

	if values.IdempotencyKey == "" || enable.IdempotencyKey == "" {
		t.Error("every batch needs an idempotency key")
	}
	if values.IdempotencyKey == enable.IdempotencyKey {
		t.Error("batches must carry distinct idempotency keys")
	}
	if values.WarehouseID != "wh-1" {
		t.Errorf("WarehouseID = %q, want wh-1", values.WarehouseID)
	}

	if len(values.Changes) != 1 {
		t.Fatalf("values batch has %d products, want 1", len(values.Changes))
	}
	vc := values.Changes[0]
	if vc.ProductID != "p1" || len(vc.Variations) != 2 {
		t.Fatalf("values change = %+v, want 2 variations of p1", vc)
	}
	for _, ch := range vc.Variations {
		if ch.Enabled != nil {
			t.Errorf("values batch should not carry enablement: %+v", ch)
		}
	}

	for _, pc := range enable.Changes {
		for _, ch := range pc.Variations {
			if ch.Price != nil || ch.Inventory != nil {
				t.Errorf("enablement batch should not carry values: %+v", ch)
			}
		}
	}
}

func TestBuildBatchesPriceCarriesCurrency(t *testing.T) {
	e := NewEditSet()
	v := makeVariation("v1", "p1", 10, 5)
	e.SetPrice(v, float64Ptr(12.5))

	batches := e.BuildBatches("wh-1", "EUR")
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	ch := batches[0].Changes[0].Variations[0]
	if ch.Price == nil || ch.Price.Amount != 12.5 || ch.Price.Currency != "EUR" {
		t.Errorf("Price = %+v, want 12.50 EUR", ch.Price)
	}
}

func TestBuildBatchesDropsClearedInventory(t *testing.T) {
	e := NewEditSet()
	v := makeVariation("v1", "p1", 10, 5)
	e.SetInventory(v, "wh-1", nil)

	if batches := e.BuildBatches("wh-1", "USD"); len(batches) != 0 {
		t.Errorf("cleared inventory should produce no batches, got %+v", batches)
	}
}

func TestBuildBatchesProductLevelEnabled(t *testing.T) {
	e := NewEditSet()
	single := makeSingleSKU("p1")
	single.Enabled = false
	multi := makeProduct("p2", 2)

	e.EnableProduct(single)
	e.DisableProduct(multi)

	batches := e.BuildBatches("wh-1", "USD")
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1 enablement batch", len(batches))
	}
	byPid := map[string]ProductChange{}
	for _, pc := range batches[0].Changes {
		byPid[pc.ProductID] = pc
	}

	// The single-SKU product flips at the product level.
	pc1, ok := byPid["p1"]
	if !ok || pc1.Enabled == nil || !*pc1.Enabled {
		t.Errorf("p1 change = %+v, want product-level enabled=true", pc1)
	}

	// The multi-variation product's state follows from its variations;
	// no product-level field is sent.
	pc2, ok := byPid["p2"]
	if !ok {
		t.Fatal("p2 missing from enablement batch")
	}
	if pc2.Enabled != nil {
		t.Errorf("p2 should not carry a product-level enabled field: %+v", pc2)
	}
	if len(pc2.Variations) != 2 {
		t.Errorf("p2 should flip via its 2 variations, got %+v", pc2.Variations)
	}
	for _, ch := range pc2.Variations {
		if ch.Enabled == nil || *ch.Enabled {
			t.Errorf("p2 variation change = %+v, want enabled=false", ch)
		}
	}
}

func TestBuildBatchesDeterministicOrder(t *testing.T) {
	build := func() []Batch {
		e := NewEditSet()
		e.SetPrice(makeVariation("vb", "p2", 10, 5), float64Ptr(11))
		e.SetPrice(makeVariation("va", "p1", 10, 5), float64Ptr(12))
		e.SetInventory(makeVariation("vc", "p1", 10, 5), "wh-1", intPtr(3))
		return e.BuildBatches("wh-1", "USD")
	}
	a, b := build(), build()
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("want exactly one values batch, got %d/%d", len(a), len(b))
	}
	if len(a[0].Changes) != len(b[0].Changes) {
		t.Fatal("change counts differ between identical edit sets")
	}
	for i := range a[0].Changes {
		ca, cb := a[0].Changes[i], b[0].Changes[i]
		if ca.ProductID != cb.ProductID || len(ca.Variations) != len(cb.Variations) {
			t.Fatalf("change %d differs: %+v vs %+v", i, ca, cb)
		}
		for j := range ca.Variations {
			if ca.Variations[j].VariationID != cb.Variations[j].VariationID {
				t.Fatalf("variation order differs at %d/%d", i, j)
			}
		}
	}
	if a[0].Changes[0].ProductID != "p1" {
		t.Errorf("products should sort by id, first = %q", a[0].Changes[0].ProductID)
	}
}
