package repository

import (
	"errors"
	"strings"
)

// ErrVersionConflict means the row changed between read and write.
var ErrVersionConflict = errors.New("row was modified concurrently")

// isUniqueViolation checks for unique constraint violations (works for both SQLite and PostgreSQL)
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
