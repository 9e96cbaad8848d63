package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error flows through respondError, which logs the technical
// error with the request id for correlation and returns the mapped
// merchant-facing message as JSON.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/merchview/catalog/internal/catalog"
)

// ErrorResponse is the JSON structure for API error responses. It carries
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the
// merchant-facing message with a status derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := catalog.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps session errors to HTTP status codes. Anything unknown is
// an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrListingRemoved):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNothingToSubmit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
