package validation

import (
	"fmt"
	"strings"
)

// Error codes reported by ValidationError.
const (
	CodeNegativeValue   = "NEGATIVE_VALUE"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeUnknownValue    = "UNKNOWN_VALUE"
	CodeOwnershipTotal  = "OWNERSHIP_TOTAL"
	CodeUnknownInvestor = "UNKNOWN_INVESTOR"
	CodeDuplicate       = "DUPLICATE"
	CodeSchema          = "SCHEMA_VIOLATION"
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every rejected field of an input.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Add appends a ValidationError.
func (e *ValidationErrors) Add(field, code, format string, args ...interface{}) {
	*e = append(*e, ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// NonNegative records an error when value is below zero.
func (e *ValidationErrors) NonNegative(field string, value float64) {
	if value < 0 {
		e.Add(field, CodeNegativeValue, "must not be negative, got %.2f", value)
	}
}

// Percentage records an error when value lies outside 0..100.
func (e *ValidationErrors) Percentage(field string, value float64) {
	if value < 0 || value > 100 {
		e.Add(field, CodeOutOfRange, "must be between 0 and 100, got %.2f", value)
	}
}

// Err returns nil when no errors were collected.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
