// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
)

// FindYear finds the row for a year index in a projection.
// Returns a pointer to the row if found, nil otherwise.
func FindYear(rows []projection.YearProjection, year int) *projection.YearProjection {
	for i := range rows {
		if rows[i].Year == year {
			return &rows[i]
		}
	}
	return nil
}

// MustFindYear returns the row for a year index and fails the test when it
// is missing.
func MustFindYear(t testing.TB, rows []projection.YearProjection, year int) projection.YearProjection {
	t.Helper()
	row := FindYear(rows, year)
	if row == nil {
		t.Fatalf("year %d not found in %d projected rows", year, len(rows))
	}
	return *row
}

// AssertClose fails the test when expected and actual differ by more than
// tolerance.
func AssertClose(t testing.TB, description string, expected, actual, tolerance float64) {
	t.Helper()
	if !mathutil.WithinTolerance(expected, actual, tolerance) {
		t.Errorf("%s: expected %.4f, got %.4f (diff %.4f)", description, expected, actual, actual-expected)
	}
}
