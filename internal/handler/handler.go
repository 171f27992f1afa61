// Package handler implements the JSON API consumed by the mini app.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/storage"
	"github.com/cloudly/miniapp/internal/validation"
	"github.com/cloudly/miniapp/internal/web"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body %w", web.ErrRequestTooLarge)
		}
		return fmt.Errorf("%w: invalid JSON body", web.ErrBadRequest)
	}
	return nil
}

// respondError maps domain errors to HTTP statuses before writing them.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	web.RespondJSONError(w, r, statusError(err))
}

func statusError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInitData),
		errors.Is(err, service.ErrInitDataExpired),
		errors.Is(err, service.ErrInvalidToken):
		return fmt.Errorf("%w: %w", web.ErrUnauthorized, err)
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCourseNotFound),
		errors.Is(err, repository.ErrLessonNotFound),
		errors.Is(err, repository.ErrJournalEntryNotFound):
		return fmt.Errorf("%w: %w", web.ErrNotFound, err)
	case errors.Is(err, service.ErrConcurrentUpdate),
		errors.Is(err, storage.ErrNotConfigured):
		return fmt.Errorf("%w: %w", web.ErrServiceUnavailable, err)
	}
	return err
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &validation.FieldError{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
