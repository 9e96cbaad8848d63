package web

// handlers_data.go covers the bulk read endpoints: CSV export and the
// warehouse listing.

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merchview/catalog/internal/catalog"
	"github.com/merchview/catalog/internal/store"
)

// handleExport streams the filtered catalog as CSV. Filters mirror the
// table's query parameters; the row cap comes from configuration.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := exportRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := parseIntParam(r, "limit", s.cfg.Catalog.ExportLimit)
	if limit <= 0 || limit > s.cfg.Catalog.ExportLimit {
		limit = s.cfg.Catalog.ExportLimit
	}

	products, err := s.store.ExportProducts(r.Context(), req, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("catalog_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := catalog.WriteCSV(w, req.WarehouseID, products); err != nil {
		// Headers are gone; all we can do is log.
		s.respondError(w, r, err)
	}
}

// exportRequest derives a fetch descriptor from export query parameters.
func exportRequest(r *http.Request) (catalog.Request, error) {
	q := r.URL.Query()

	warehouseID := q.Get("warehouse_id")
	if warehouseID == "" {
		return catalog.Request{}, badRequestf("warehouse_id is required")
	}

	req := catalog.Request{
		WarehouseID: warehouseID,
		Sort:        catalog.Sort{Field: catalog.SortLastUpdate, Order: catalog.OrderDesc},
	}

	if term := q.Get("query"); term != "" {
		field := catalog.SearchField(q.Get("field"))
		switch field {
		case catalog.SearchID, catalog.SearchName, catalog.SearchSKU, catalog.SearchParentSKU:
		case "":
			field = catalog.SearchName
		default:
			return catalog.Request{}, badRequestf("unknown search field %q", field)
		}
		req.Query = term
		req.SearchField = field
	}

	// Searching by the exact identifier pins down a single listing, so the
	// state and enabled filters are suspended, same as the table view.
	if req.SearchField == catalog.SearchID {
		return req, nil
	}

	if state := q.Get("state"); state != "" && state != string(catalog.SelectAllStates) {
		st := catalog.ListingState(state)
		if !st.Valid() {
			return catalog.Request{}, badRequestf("unknown listing state %q", state)
		}
		req.State = &st
	}

	switch q.Get("enabled") {
	case "", "ALL":
	case "TRUE":
		t := true
		req.Enabled = &t
	case "FALSE":
		f := false
		req.Enabled = &f
	default:
		return catalog.Request{}, badRequestf("enabled must be ALL, TRUE, or FALSE")
	}

	return req, nil
}

// ============================================================================
// Warehouses
// ============================================================================

func (s *Server) handleListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := s.store.ListWarehouses(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"warehouses": warehouses})
}

func (s *Server) handleDeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "warehouseID")
	if err := s.store.DeleteWarehouse(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrPrimaryWarehouse) {
			s.respondError(w, r, badRequestf("%v", err))
			return
		}
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
