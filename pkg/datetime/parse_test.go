package datetime

import (
	"testing"
)

func TestMustParseTime(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		dateStr  string
		expected string
	}{
		{
			name:     "Valid date",
			layout:   DateTimeLayout,
			dateStr:  "2025-01",
			expected: "2025-01",
		},
		{
			name:     "Another valid date",
			layout:   DateTimeLayout,
			dateStr:  "2030-12",
			expected: "2030-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseTime(tt.layout, tt.dateStr)
			if result.Format(tt.layout) != tt.expected {
				t.Errorf("MustParseTime() = %s, expected %s", result.Format(tt.layout), tt.expected)
			}
		})
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateTimeLayout, "invalid-date")
}

func TestOffsetDateAdvanced(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		layout   string
		months   int
		expected string
		wantErr  bool
	}{
		{
			name:     "Add multiple years",
			date:     "2025-01",
			layout:   DateTimeLayout,
			months:   24,
			expected: "2027-01",
			wantErr:  false,
		},
		{
			name:     "Subtract multiple years",
			date:     "2025-01",
			layout:   DateTimeLayout,
			months:   -24,
			expected: "2023-01",
			wantErr:  false,
		},
		{
			name:     "Cross year boundary forward",
			date:     "2025-06",
			layout:   DateTimeLayout,
			months:   8,
			expected: "2026-02",
			wantErr:  false,
		},
		{
			name:     "Cross year boundary backward",
			date:     "2025-06",
			layout:   DateTimeLayout,
			months:   -8,
			expected: "2024-10",
			wantErr:  false,
		},
		{
			name:     "Zero months",
			date:     "2025-06",
			layout:   DateTimeLayout,
			months:   0,
			expected: "2025-06",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, tt.layout, tt.months)
			if tt.wantErr {
				if err == nil {
					t.Errorf("OffsetDate() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("OffsetDate() error = %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestFinancialYearOf(t *testing.T) {
	tests := []struct {
		date     string
		expected string
	}{
		{"2025-07", "2025-26"},
		{"2026-06", "2025-26"},
		{"2026-01", "2025-26"},
		{"1999-07", "1999-00"},
		{"2000-03", "1999-00"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			result := FinancialYearOf(MustParseTime(DateTimeLayout, tt.date))
			if result != tt.expected {
				t.Errorf("FinancialYearOf(%s) = %s, expected %s", tt.date, result, tt.expected)
			}
		})
	}
}

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		year     int
		expected string
		wantErr  bool
	}{
		{name: "First year from July", start: "2025-07", year: 1, expected: "2025-26"},
		{name: "Tenth year from July", start: "2025-07", year: 10, expected: "2034-35"},
		{name: "Start mid financial year", start: "2025-03", year: 1, expected: "2024-25"},
		{name: "Construction year", start: "2025-07", year: 0, expected: "2024-25"},
		{name: "No start date", start: "", year: 3, expected: ""},
		{name: "Invalid start date", start: "July 2025", year: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FinancialYear(tt.start, tt.year)
			if tt.wantErr {
				if err == nil {
					t.Errorf("FinancialYear() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("FinancialYear() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("FinancialYear(%q, %d) = %q, expected %q", tt.start, tt.year, result, tt.expected)
			}
		})
	}
}
