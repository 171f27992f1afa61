package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError reports which submitted field failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MaxTextLength bounds free-text journal and worksheet answers.
const MaxTextLength = 5000

// Required fails when value is empty after trimming.
func Required(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return &FieldError{Field: field, Message: "is required"}
	}
	return MaxLength(field, trimmed, MaxTextLength)
}

// MaxLength fails when value is longer than max characters.
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return &FieldError{Field: field, Message: fmt.Sprintf("is too long (max %d characters)", max)}
	}
	return nil
}

// Range fails when n is outside [min, max].
func Range(field string, n, min, max int) error {
	if n < min || n > max {
		return &FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
