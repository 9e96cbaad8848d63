package web

// handlers_mutations.go covers the write paths: staging cell edits,
// discarding them, submitting the batch, toggling variation expansion,
// and removing a listing.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/merchview/catalog/internal/catalog"
)

// ============================================================================
// Staged edits
// ============================================================================

// PriceRequest stages a price override. A null amount clears the cell,
// which blocks submission until resolved.
type PriceRequest struct {
	VariationID string   `json:"variation_id"`
	Amount      *float64 `json:"amount"`
}

func (s *Server) handleStagePrice(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req PriceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.VariationID == "" {
		s.respondError(w, r, badRequestf("variation_id is required"))
		return
	}
	if err := sess.StagePrice(req.VariationID, req.Amount); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// InventoryRequest stages a stock override in the session's warehouse.
// A null count clears the cell, meaning no override.
type InventoryRequest struct {
	VariationID string `json:"variation_id"`
	Count       *int   `json:"count"`
}

func (s *Server) handleStageInventory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req InventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.VariationID == "" {
		s.respondError(w, r, badRequestf("variation_id is required"))
		return
	}
	if err := sess.StageInventory(req.VariationID, req.Count); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// EnabledRequest toggles a product or a single variation. Exactly one of
// ProductID and VariationID must be set; the sibling cascade follows from
// which one it is.
type EnabledRequest struct {
	ProductID   string `json:"product_id,omitempty"`
	VariationID string `json:"variation_id,omitempty"`
	Enabled     bool   `json:"enabled"`
}

func (s *Server) handleStageEnabled(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req EnabledRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	switch {
	case req.ProductID != "" && req.VariationID != "":
		s.respondError(w, r, badRequestf("set product_id or variation_id, not both"))
		return
	case req.ProductID != "":
		err = sess.StageProductEnabled(req.ProductID, req.Enabled)
	case req.VariationID != "":
		err = sess.StageVariationEnabled(req.VariationID, req.Enabled)
	default:
		s.respondError(w, r, badRequestf("product_id or variation_id is required"))
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

func (s *Server) handleDiscardEdits(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.DiscardEdits(); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// ============================================================================
// Submission
// ============================================================================

// SubmitResponse carries the sink's verdict alongside the post-submit
// view. On a business rejection the view still holds the staged edits.
type SubmitResponse struct {
	Result catalog.SubmitResult `json:"result"`
	View   catalog.View         `json:"view"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := sess.Submit(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, SubmitResponse{Result: res, View: sess.View()})
}

// ============================================================================
// Variation expansion
// ============================================================================

func (s *Server) handleToggleExpansion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := sess.ToggleExpansion(r.Context(), productID); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// ============================================================================
// Listing removal
// ============================================================================

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	res, err := s.store.RemoveProduct(r.Context(), productID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !res.OK {
		w.WriteHeader(http.StatusConflict)
	}
	writeJSON(w, res)
}
