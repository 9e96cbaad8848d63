package catalog

import (
	"sort"

	"github.com/google/uuid"
)

// VariationChange is one variation's portion of a submission. Nil fields
// are untouched on the server.
type VariationChange struct {
	VariationID string `json:"variation_id"`
	Price       *Money `json:"price,omitempty"`
	Inventory   *int   `json:"inventory,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// ProductChange groups a product's staged changes. Enabled is set only for
// products without real variations; otherwise the product's state follows
// from its variations.
type ProductChange struct {
	ProductID  string            `json:"product_id"`
	Enabled    *bool             `json:"enabled,omitempty"`
	Variations []VariationChange `json:"variations,omitempty"`
}

// Batch is one atomic submission unit. The sink applies all of it or none
// of it, and the idempotency key lets a retried batch be applied once.
type Batch struct {
	IdempotencyKey string          `json:"idempotency_key"`
	WarehouseID    string          `json:"warehouse_id"`
	Changes        []ProductChange `json:"changes"`
}

// BuildBatches partitions the staged edits into at most two batches: one
// carrying variation price and inventory writes, one carrying product and
// variation enablement. Cleared inventory entries are dropped here, since
// a cleared cell means no override. Empty partitions are omitted.
//
// Output order is sorted by product then variation id so that identical
// edit sets always produce identical batches.
func (e *EditSet) BuildBatches(warehouseID, currency string) []Batch {
	var batches []Batch
	if b, ok := e.valueBatch(warehouseID, currency); ok {
		batches = append(batches, b)
	}
	if b, ok := e.enablementBatch(warehouseID); ok {
		batches = append(batches, b)
	}
	return batches
}

func (e *EditSet) valueBatch(warehouseID, currency string) (Batch, bool) {
	perProduct := map[string]map[string]*VariationChange{}
	change := func(pid, vid string) *VariationChange {
		if perProduct[pid] == nil {
			perProduct[pid] = map[string]*VariationChange{}
		}
		if perProduct[pid][vid] == nil {
			perProduct[pid][vid] = &VariationChange{VariationID: vid}
		}
		return perProduct[pid][vid]
	}
	for vid, p := range e.prices {
		if p.Amount == nil {
			continue
		}
		change(p.ProductID, vid).Price = &Money{Amount: *p.Amount, Currency: currency}
	}
	for vid, inv := range e.inventories {
		if inv.Count == nil {
			continue
		}
		n := *inv.Count
		change(inv.ProductID, vid).Inventory = &n
	}
	changes := flattenChanges(perProduct, nil)
	if len(changes) == 0 {
		return Batch{}, false
	}
	return Batch{
		IdempotencyKey: uuid.NewString(),
		WarehouseID:    warehouseID,
		Changes:        changes,
	}, true
}

func (e *EditSet) enablementBatch(warehouseID string) (Batch, bool) {
	perProduct := map[string]map[string]*VariationChange{}
	productLevel := map[string]*bool{}
	for vid, ov := range e.variationEnabled {
		if perProduct[ov.productID] == nil {
			perProduct[ov.productID] = map[string]*VariationChange{}
		}
		on := ov.enabled
		perProduct[ov.productID][vid] = &VariationChange{VariationID: vid, Enabled: &on}
	}
	for pid, ov := range e.productEnabled {
		if ov.hasVariations {
			// The product's state on the server follows from its variations.
			if perProduct[pid] == nil {
				perProduct[pid] = map[string]*VariationChange{}
			}
			continue
		}
		on := ov.enabled
		productLevel[pid] = &on
		if perProduct[pid] == nil {
			perProduct[pid] = map[string]*VariationChange{}
		}
	}
	changes := flattenChanges(perProduct, productLevel)
	if len(changes) == 0 {
		return Batch{}, false
	}
	return Batch{
		IdempotencyKey: uuid.NewString(),
		WarehouseID:    warehouseID,
		Changes:        changes,
	}, true
}

func flattenChanges(perProduct map[string]map[string]*VariationChange, productLevel map[string]*bool) []ProductChange {
	pids := make([]string, 0, len(perProduct))
	for pid := range perProduct {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var out []ProductChange
	for _, pid := range pids {
		byVid := perProduct[pid]
		vids := make([]string, 0, len(byVid))
		for vid := range byVid {
			vids = append(vids, vid)
		}
		sort.Strings(vids)

		pc := ProductChange{ProductID: pid}
		if productLevel != nil {
			pc.Enabled = productLevel[pid]
		}
		for _, vid := range vids {
			pc.Variations = append(pc.Variations, *byVid[vid])
		}
		if pc.Enabled == nil && len(pc.Variations) == 0 {
			continue
		}
		out = append(out, pc)
	}
	return out
}
