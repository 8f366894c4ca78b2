// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CSVHeader is the column order of CSV output.
var CSVHeader = []string{
	"year",
	"financialYear",
	"rentalIncome",
	"operatingExpenses",
	"mainInterest",
	"equityInterest",
	"mainPayment",
	"equityPayment",
	"depreciation",
	"taxableIncome",
	"taxBenefit",
	"afterTaxCashFlow",
	"cumulativeCashFlow",
	"propertyValue",
	"mainLoanBalance",
	"equityLoanBalance",
	"propertyEquity",
	"totalReturn",
}

// Write renders result in the named format.
func Write(w io.Writer, format string, result *projection.Result, summaries []optimization.Summary) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", constants.OutputFormatPretty:
		return WritePretty(w, result, summaries)
	case constants.OutputFormatCSV:
		return WriteCSV(w, result)
	case constants.OutputFormatJSON:
		return WriteJSON(w, result, summaries)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WritePretty writes the year table, the funding position and the summary.
func WritePretty(w io.Writer, result *projection.Result, summaries []optimization.Summary) error {
	if result == nil {
		return fmt.Errorf("no projection to format")
	}
	p := message.NewPrinter(language.English)
	var buf bytes.Buffer

	name := result.Name
	if name == "" {
		name = "property"
	}
	fmt.Fprintf(&buf, "--- Projection for %s ---\n", name)
	fmt.Fprintf(&buf, "Year | FY      | Rent          | Interest      | Tax Benefit   | After Tax     | Cumulative    | Value          | Debt           | Equity\n")
	fmt.Fprintf(&buf, "____ | _______ | _____________ | _____________ | _____________ | _____________ | _____________ | ______________ | ______________ | ______________\n")
	for _, row := range result.Years {
		fy := row.FinancialYear
		if fy == "" {
			fy = "-"
		}
		_, _ = p.Fprintf(&buf, "%4d | %-7s | $%12.2f | $%12.2f | $%12.2f | $%12.2f | $%12.2f | $%13.2f | $%13.2f | $%13.2f\n",
			row.Year, fy, row.RentalIncome, row.TotalInterest(), row.TaxBenefit, row.AfterTaxCashFlow,
			row.CumulativeCashFlow, row.PropertyValue, row.TotalDebt(), row.PropertyEquity)
	}

	f := result.Funding
	fmt.Fprintf(&buf, "\nFunding\n")
	_, _ = p.Fprintf(&buf, "  Total project cost:    $%.2f\n", f.TotalProjectCost)
	_, _ = p.Fprintf(&buf, "  Main loan:             $%.2f\n", f.MainLoanAmount)
	_, _ = p.Fprintf(&buf, "  Equity loan:           $%.2f (available $%.2f)\n", f.EquityLoanAmount, f.AvailableEquity)
	_, _ = p.Fprintf(&buf, "  Minimum cash required: $%.2f\n", f.MinimumCashRequired)
	_, _ = p.Fprintf(&buf, "  Cash deposit:          $%.2f\n", f.ActualCashDeposit)
	if f.FundingShortfall > 0 {
		_, _ = p.Fprintf(&buf, "  Shortfall:             $%.2f\n", f.FundingShortfall)
	} else {
		_, _ = p.Fprintf(&buf, "  Surplus:               $%.2f\n", f.FundingSurplus)
	}

	if c := result.Construction; c != nil {
		fmt.Fprintf(&buf, "\nConstruction (%s funded, %d months)\n", c.Policy, c.Accrual.PeriodMonths)
		_, _ = p.Fprintf(&buf, "  Interest accrued:      $%.2f\n", c.Accrual.TotalInterest)
		_, _ = p.Fprintf(&buf, "  Capitalised:           $%.2f\n", c.Accrual.CapitalisedInterest)
		_, _ = p.Fprintf(&buf, "  Paid in cash:          $%.2f\n", c.Accrual.CashInterest)
	}

	s := result.Summary
	fmt.Fprintf(&buf, "\nSummary (years %d-%d)\n", s.From, s.To)
	_, _ = p.Fprintf(&buf, "  Weekly cash flow:       $%.2f\n", s.WeeklyCashFlow)
	_, _ = p.Fprintf(&buf, "  Cumulative tax savings: $%.2f\n", s.CumulativeTaxSavings)
	_, _ = p.Fprintf(&buf, "  Equity at end:          $%.2f\n", s.EquityAtEnd)
	_, _ = p.Fprintf(&buf, "  ROI:                    %.2f%%\n", s.ROI)

	if len(summaries) > 0 {
		fmt.Fprintf(&buf, "\nOptimizer\n")
		for _, summary := range summaries {
			_, _ = p.Fprintf(&buf, "  %s: $%.2f -> $%.2f (worst cash flow $%.2f in year %d, floor $%.2f, %d iterations)\n",
				summary.Field, summary.Original, summary.Value, summary.WorstCashFlow, summary.WorstYear,
				summary.Floor, summary.Iterations)
			for _, note := range summary.Notes {
				fmt.Fprintf(&buf, "    note: %s\n", note)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(&buf, "\nWarnings\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&buf, "  - %s\n", warning)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCSV writes one row per projected year with amounts fixed to cents.
func WriteCSV(w io.Writer, result *projection.Result) error {
	if result == nil {
		return fmt.Errorf("no projection to format")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range result.Years {
		record := []string{
			strconv.Itoa(row.Year),
			row.FinancialYear,
			cents(row.RentalIncome),
			cents(row.OperatingExpenses),
			cents(row.MainInterest),
			cents(row.EquityInterest),
			cents(row.MainPayment),
			cents(row.EquityPayment),
			cents(row.Depreciation.Total),
			cents(row.TaxableIncome),
			cents(row.TaxBenefit),
			cents(row.AfterTaxCashFlow),
			cents(row.CumulativeCashFlow),
			cents(row.PropertyValue),
			cents(row.MainLoanBalance),
			cents(row.EquityLoanBalance),
			cents(row.PropertyEquity),
			cents(row.TotalReturn),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVString returns the CSV rendering of result.
func CSVString(result *projection.Result) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type jsonDocument struct {
	*projection.Result
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *projection.Result, summaries []optimization.Summary) error {
	if result == nil {
		return fmt.Errorf("no projection to format")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonDocument{Result: result, Optimizations: summaries})
}

func cents(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}
