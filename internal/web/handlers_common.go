// Package web provides HTTP handlers for the catalog application.
// This file contains shared utilities used across handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/merchview/catalog/internal/catalog"
)

// MaxBodySize is the maximum allowed request body (1MB). Edit and query
// payloads are tiny; anything larger is malformed.
const MaxBodySize = 1 << 20

// errBadRequest marks errors caused by malformed client input.
var errBadRequest = errors.New("bad request")

// badRequestf builds an error that respondError maps to a 400.
func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads the request body into v, rejecting unknown fields and
// oversized payloads.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// session resolves the sessionID route parameter against the registry.
func (s *Server) session(r *http.Request) (*catalog.Session, error) {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		return nil, badRequestf("missing session id")
	}
	return s.registry.Get(id)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// syncedView brings the session current and renders it. Fetch failures
// surface to the caller; the previous page stays intact server-side.
func (s *Server) syncedView(w http.ResponseWriter, r *http.Request, sess *catalog.Session) {
	if err := sess.Sync(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}
