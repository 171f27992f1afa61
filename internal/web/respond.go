// Package web holds JSON response helpers shared by handlers and middleware.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudly/miniapp/internal/validation"
)

// StatusErr is a sentinel error type used to represent HTTP status code errors.
type StatusErr int

// Error returns a lowercase representation of the HTTP status text for the wrapped code.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	ErrBadRequest          StatusErr = http.StatusBadRequest
	ErrUnauthorized        StatusErr = http.StatusUnauthorized
	ErrForbidden           StatusErr = http.StatusForbidden
	ErrNotFound            StatusErr = http.StatusNotFound
	ErrRequestTooLarge     StatusErr = http.StatusRequestEntityTooLarge
	ErrTooManyRequests     StatusErr = http.StatusTooManyRequests
	ErrInternalServerError StatusErr = http.StatusInternalServerError
	ErrServiceUnavailable  StatusErr = http.StatusServiceUnavailable
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
}

// RespondJSON writes response as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, response any) {
	b, err := json.Marshal(response)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
	w.Write([]byte("\n"))
}

// RespondJSONError writes err as a JSON error body.
//
// A *validation.FieldError becomes a 400 naming the field. An error wrapping
// a StatusErr uses its code. Anything else is a 500 whose details are logged
// but not sent to the client.
//
//	web.RespondJSONError(w, r, fmt.Errorf("course %w", web.ErrNotFound))
func RespondJSONError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		RespondJSON(w, http.StatusBadRequest, errorResponse{Error: fe.Error(), Field: fe.Field})
		return
	}

	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}

	message := err.Error()
	if se == ErrInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		message = ErrInternalServerError.Error()
	}

	RespondJSON(w, int(se), errorResponse{Error: message})
}
