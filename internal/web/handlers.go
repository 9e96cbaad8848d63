package web

// handlers.go covers session lifecycle and query state: creating and
// dropping sessions, search, pagination, sorting, and filters. Every
// state-changing handler responds with the freshly synced view so the
// client can redraw from one payload.

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/merchview/catalog/internal/catalog"
)

// ============================================================================
// Session lifecycle
// ============================================================================

// CreateSessionRequest opens an editing session scoped to one warehouse.
type CreateSessionRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// CreateSessionResponse returns the new session id with its initial view.
type CreateSessionResponse struct {
	SessionID string            `json:"session_id"`
	Warehouse catalog.Warehouse `json:"warehouse"`
	View      catalog.View      `json:"view"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.WarehouseID == "" {
		s.respondError(w, r, badRequestf("warehouse_id is required"))
		return
	}

	wh, err := s.store.GetWarehouse(r.Context(), req.WarehouseID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess := catalog.NewSession(catalog.SessionParams{
		Source:         s.store,
		Sink:           s.store,
		Warehouse:      wh,
		Currency:       s.cfg.Catalog.Currency,
		DebounceDelay:  s.cfg.Catalog.SearchDebounce,
		CollapsedShown: s.cfg.Catalog.CollapsedVariations,
		Logger:         slog.Default(),
	})
	sess.SetLimit(s.cfg.Catalog.PageSize)

	if err := sess.Sync(r.Context()); err != nil {
		sess.Close()
		s.respondError(w, r, err)
		return
	}

	id := s.registry.Create(sess)
	slog.Info("session created", "session_id", id, "warehouse_id", wh.ID)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, CreateSessionResponse{
		SessionID: id,
		Warehouse: wh,
		View:      sess.View(),
	})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.syncedView(w, r, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.registry.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Search
// ============================================================================

// SearchRequest records a keystroke in the search box. The term commits
// after the debounce delay, so the response view reflects the state as of
// this keystroke, not the eventual commit.
type SearchRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.SetSearchText(req.Text)
	s.syncedView(w, r, sess)
}

func (s *Server) handleFlushSearch(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.FlushSearch()
	s.syncedView(w, r, sess)
}

// SearchFieldRequest switches which column the search term matches.
type SearchFieldRequest struct {
	Field catalog.SearchField `json:"field"`
}

func (s *Server) handleSearchField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req SearchFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.SetSearchField(req.Field); err != nil {
		s.respondError(w, r, badRequestf("%v", err))
		return
	}
	s.syncedView(w, r, sess)
}

// ============================================================================
// Pagination and sorting
// ============================================================================

// PageRequest moves the table to a different offset or page size. A zero
// Limit keeps the current page size.
type PageRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit,omitempty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req PageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Limit > 0 {
		sess.SetLimit(req.Limit)
	}
	sess.SetOffset(req.Offset)
	s.syncedView(w, r, sess)
}

// SortRequest applies a column sort. An empty order returns the column
// header to its neutral position, falling back to the default sort.
type SortRequest struct {
	Field catalog.SortField `json:"field"`
	Order catalog.SortOrder `json:"order"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req SortRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	switch req.Field {
	case catalog.SortSales, catalog.SortLastUpdate:
	default:
		s.respondError(w, r, badRequestf("unknown sort field %q", req.Field))
		return
	}
	switch req.Order {
	case catalog.OrderNotApplied, catalog.OrderAsc, catalog.OrderDesc:
	default:
		s.respondError(w, r, badRequestf("unknown sort order %q", req.Order))
		return
	}
	sess.SetSort(&catalog.Sort{Field: req.Field, Order: req.Order})
	s.syncedView(w, r, sess)
}

// ============================================================================
// Filters
// ============================================================================

// FiltersRequest sets the state, enabled, and badge filters in one call.
type FiltersRequest struct {
	State   catalog.StateSelection   `json:"state"`
	Enabled catalog.EnabledSelection `json:"enabled"`
	Badges  catalog.BadgeFilters     `json:"badges"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req FiltersRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.SetStateFilter(req.State); err != nil {
		s.respondError(w, r, badRequestf("%v", err))
		return
	}
	if err := sess.SetEnabledFilter(req.Enabled); err != nil {
		s.respondError(w, r, badRequestf("%v", err))
		return
	}
	sess.SetBadgeFilters(req.Badges)
	s.syncedView(w, r, sess)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.ResetFilters()
	s.syncedView(w, r, sess)
}
