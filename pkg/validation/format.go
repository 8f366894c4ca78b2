// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateYearRange checks a 1-based inclusive projection range.
func ValidateYearRange(from, to int) error {
	if from < 1 {
		return fmt.Errorf("projection start year must be at least 1, got %d", from)
	}
	if to < from {
		return fmt.Errorf("projection end year %d is before start year %d", to, from)
	}
	return nil
}
