package integration

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const configPath = "testdata/config.yaml"

func loadAndProject(t *testing.T) (*config.Configuration, *projection.Result) {
	t.Helper()
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	if err := config.ValidateRecord(conf.Property); err != nil {
		t.Fatalf("ValidateRecord failed: %v", err)
	}
	result, err := projection.NewEngine(zap.NewNop(), conf.Assumptions).Project(conf.Property, conf.Projection.From, conf.Projection.To)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	return conf, result
}

func TestMainIntegrationBaseline(t *testing.T) {
	conf, result := loadAndProject(t)

	if conf.Output.Format != "csv" {
		t.Errorf("expected csv output format from config, got %s", conf.Output.Format)
	}
	if len(result.Years) != 16 {
		t.Fatalf("expected construction row plus 15 years, got %d rows", len(result.Years))
	}
	if result.Years[0].Year != 0 {
		t.Fatalf("expected the construction row first, got year %d", result.Years[0].Year)
	}
	if result.Construction == nil {
		t.Fatal("expected a construction summary")
	}

	accrual := result.Construction.Accrual
	if math.Abs(accrual.CapitalisedInterest+accrual.CashInterest-accrual.TotalInterest) > 0.01 {
		t.Errorf("capitalised %.2f + cash %.2f != total %.2f",
			accrual.CapitalisedInterest, accrual.CashInterest, accrual.TotalInterest)
	}
	if math.Abs(accrual.CashInterest-0.4*accrual.TotalInterest) > 0.01 {
		t.Errorf("hybrid 40%% cash policy paid %.2f of %.2f in cash", accrual.CashInterest, accrual.TotalInterest)
	}

	last := len(result.Construction.Drawdowns) - 1
	if last < 0 || math.Abs(result.Construction.Drawdowns[last].CumulativePercentage-100) > 1e-9 {
		t.Errorf("expected drawdowns to reach 100%%, got %+v", result.Construction.Drawdowns)
	}

	if !result.Funding.Closes() {
		t.Errorf("expected funding to close, shortfall %.2f", result.Funding.FundingShortfall)
	}
	if result.Funding.EquityLoanAmount <= 0 {
		t.Errorf("expected the equity loan to fund the gap, got %.2f", result.Funding.EquityLoanAmount)
	}

	year1 := testutil.MustFindYear(t, result.Years, 1)
	if year1.FinancialYear != "2026-27" {
		t.Errorf("year 1 financial year = %s, expected 2026-27", year1.FinancialYear)
	}
	if year1.MainLoanStatus != "io" {
		t.Errorf("year 1 main loan status = %s, expected io", year1.MainLoanStatus)
	}
	year6 := testutil.MustFindYear(t, result.Years, 6)
	if year6.MainLoanStatus != "pi" {
		t.Errorf("year 6 main loan status = %s, expected pi", year6.MainLoanStatus)
	}
	if year6.MainLoanBalance >= year1.MainLoanBalance {
		t.Errorf("main loan should amortise after the IO term: %.2f >= %.2f", year6.MainLoanBalance, year1.MainLoanBalance)
	}
	if year1.TaxBenefit <= 0 {
		t.Errorf("expected a tax saving in year 1 of a geared property, got %.2f", year1.TaxBenefit)
	}
	if len(year1.Investors) != 2 {
		t.Errorf("expected per-investor impacts for both owners, got %d", len(year1.Investors))
	}
}

func TestDataConsistency(t *testing.T) {
	_, result := loadAndProject(t)

	running := 0.0
	for i, row := range result.Years {
		running += row.AfterTaxCashFlow
		testutil.AssertClose(t, "cumulative cash flow", running, row.CumulativeCashFlow, 0.01)
		testutil.AssertClose(t, "equity", row.PropertyValue-row.TotalDebt(), row.PropertyEquity, 0.01)
		if i > 0 && row.Year != result.Years[i-1].Year+1 {
			t.Errorf("years not contiguous at row %d: %d after %d", i, row.Year, result.Years[i-1].Year)
		}
		if row.MainLoanBalance < 0 || row.EquityLoanBalance < 0 {
			t.Errorf("year %d has a negative loan balance", row.Year)
		}
	}

	_, again := loadAndProject(t)
	for i := range result.Years {
		if result.Years[i].AfterTaxCashFlow != again.Years[i].AfterTaxCashFlow ||
			result.Years[i].PropertyValue != again.Years[i].PropertyValue {
			t.Fatalf("projection is not deterministic at year %d", result.Years[i].Year)
		}
	}
}

func TestCSVOutputFormat(t *testing.T) {
	_, result := loadAndProject(t)

	var buf bytes.Buffer
	if err := output.WriteCSV(&buf, result); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if len(records) != len(result.Years)+1 {
		t.Fatalf("expected %d CSV rows, got %d", len(result.Years)+1, len(records))
	}
	for i, record := range records[1:] {
		if len(record) != len(output.CSVHeader) {
			t.Errorf("row %d has %d columns, expected %d", i, len(record), len(output.CSVHeader))
		}
		for _, cell := range record[2:] {
			if dot := strings.IndexByte(cell, '.'); dot < 0 || len(cell)-dot != 3 {
				t.Errorf("row %d cell %q is not fixed to cents", i, cell)
			}
		}
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	_, result := loadAndProject(t)

	var buf bytes.Buffer
	if err := output.WritePretty(&buf, result, nil); err != nil {
		t.Fatalf("WritePretty failed: %v", err)
	}
	text := buf.String()
	for _, want := range []string{"--- Projection for Brunswick townhouse ---", "Construction (hybrid funded, 12 months)", "Summary (years 1-15)"} {
		if !strings.Contains(text, want) {
			t.Errorf("pretty output missing %q", want)
		}
	}
}

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	engine := projection.NewEngine(zap.NewNop(), conf.Assumptions)

	start := time.Now()
	const runs = 200
	for i := 0; i < runs; i++ {
		if _, err := engine.Project(conf.Property, 1, 40); err != nil {
			t.Fatalf("Project failed: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed > 10*time.Second {
		t.Errorf("%d forty-year projections took %v", runs, elapsed)
	}
	t.Logf("%d projections in %v (%v each)", runs, elapsed, elapsed/runs)
}

func BenchmarkProject(b *testing.B) {
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		b.Fatalf("LoadConfiguration failed: %v", err)
	}
	engine := projection.NewEngine(zap.NewNop(), conf.Assumptions)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Project(conf.Property, 1, 30); err != nil {
			b.Fatal(err)
		}
	}
}
