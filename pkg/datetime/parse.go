// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/property-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// FinancialYearOf returns the Australian financial year (July to June)
// containing t, formatted like "2025-26".
func FinancialYearOf(t time.Time) string {
	startYear := t.Year()
	if int(t.Month()) < constants.FinancialYearStartMonth {
		startYear--
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// FinancialYear labels a 1-based projection year with the financial year its
// first month falls in, given the first operating month in YYYY-MM form.
// Year 0 is labelled with the financial year twelve months before start.
// An empty start yields an empty label.
func FinancialYear(start string, yearIndex int) (string, error) {
	if start == "" {
		return "", nil
	}
	month, err := OffsetDate(start, DateTimeLayout, (yearIndex-1)*constants.MonthsPerYear)
	if err != nil {
		return "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	return FinancialYearOf(MustParseTime(DateTimeLayout, month)), nil
}
