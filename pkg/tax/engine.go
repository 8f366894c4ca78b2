package tax

import (
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Investor is a person who may own a share of the property.
type Investor struct {
	ID           string  `json:"id"`
	Name         string  `json:"name,omitempty"`
	AnnualIncome float64 `json:"annualIncome"`
	OtherIncome  float64 `json:"otherIncome"`
	MedicareLevy bool    `json:"medicareLevy"`
}

// BaseIncome is the investor's income before the property.
func (i Investor) BaseIncome() float64 {
	return i.AnnualIncome + i.OtherIncome
}

// Ownership allocates a percentage of the property to an investor.
type Ownership struct {
	InvestorID string  `json:"investorId"`
	Percentage float64 `json:"percentage"`
}

// InvestorImpact is the tax effect of the property on one investor.
// A negative Delta is a tax saving.
type InvestorImpact struct {
	InvestorID   string  `json:"investorId"`
	Ownership    float64 `json:"ownership"`
	BaseIncome   float64 `json:"baseIncome"`
	Share        float64 `json:"share"`
	TaxWithout   float64 `json:"taxWithout"`
	TaxWith      float64 `json:"taxWith"`
	Delta        float64 `json:"delta"`
	MarginalRate float64 `json:"marginalRate"`
}

// Assessment aggregates the property's tax effect across investors.
type Assessment struct {
	Year            int              `json:"year"`
	TaxableIncome   float64          `json:"taxableIncome"`
	Investors       []InvestorImpact `json:"investors"`
	TotalTaxWithout float64          `json:"totalTaxWithout"`
	TotalTaxWith    float64          `json:"totalTaxWith"`
	TotalDelta      float64          `json:"totalDelta"`
}

// Benefit is the tax saving as a positive number; a tax cost is negative.
func (a Assessment) Benefit() float64 {
	return -a.TotalDelta
}

// Engine computes income tax for investors.
type Engine struct {
	brackets     []Bracket
	medicareRate float64
	cpiRate      float64
	logger       *zap.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithBrackets replaces the resident rate table.
func WithBrackets(brackets []Bracket) Option {
	return func(e *Engine) {
		e.brackets = append([]Bracket(nil), brackets...)
	}
}

// WithMedicareLevyRate sets the Medicare levy percentage.
func WithMedicareLevyRate(rate float64) Option {
	return func(e *Engine) {
		e.medicareRate = rate
	}
}

// WithCPIRate sets the annual income indexation percentage.
func WithCPIRate(rate float64) Option {
	return func(e *Engine) {
		e.cpiRate = rate
	}
}

// NewEngine creates an Engine using the resident rates, the default Medicare
// levy and the default CPI rate unless overridden.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		brackets:     ResidentRates,
		medicareRate: DefaultMedicareLevyRate,
		cpiRate:      constants.DefaultCPIRate,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// IncomeTax is the progressive tax on income, excluding the Medicare levy.
func (e *Engine) IncomeTax(income float64) float64 {
	return progressiveTax(e.brackets, income)
}

// TotalTax is income tax plus the Medicare levy when medicare is set.
func (e *Engine) TotalTax(income float64, medicare bool) float64 {
	total := e.IncomeTax(income)
	if medicare {
		total += mathutil.ApplyPercentage(mathutil.NonNegative(income), e.medicareRate)
	}
	return total
}

// MarginalRate is the bracket rate applying to the last dollar of income.
// It is informational only.
func (e *Engine) MarginalRate(income float64) float64 {
	return marginalRate(e.brackets, income)
}

// IndexIncome grows income by CPI for every year after the first.
func (e *Engine) IndexIncome(income float64, year int) float64 {
	return income * mathutil.Compound(e.cpiRate, year-1)
}

// Assess allocates taxableIncome to investors by ownership and computes each
// investor's tax with and without their share. Investors without an
// allocation bear no share. When no allocations are given the property is
// split equally between all investors.
func (e *Engine) Assess(taxableIncome float64, year int, investors []Investor, ownership []Ownership) Assessment {
	assessment := Assessment{
		Year:          year,
		TaxableIncome: taxableIncome,
		Investors:     make([]InvestorImpact, 0, len(investors)),
	}

	shares := ownershipByInvestor(investors, ownership)
	for _, investor := range investors {
		pct := shares[investor.ID]
		base := e.IndexIncome(investor.BaseIncome(), year)
		share := mathutil.ApplyPercentage(taxableIncome, pct)
		without := e.TotalTax(base, investor.MedicareLevy)
		with := e.TotalTax(base+share, investor.MedicareLevy)

		impact := InvestorImpact{
			InvestorID:   investor.ID,
			Ownership:    pct,
			BaseIncome:   base,
			Share:        share,
			TaxWithout:   without,
			TaxWith:      with,
			Delta:        with - without,
			MarginalRate: e.MarginalRate(base),
		}
		assessment.Investors = append(assessment.Investors, impact)
		assessment.TotalTaxWithout += without
		assessment.TotalTaxWith += with
		assessment.TotalDelta += impact.Delta
	}

	e.logger.Debug("tax assessed",
		zap.String("op", "tax.Assess"),
		zap.Int("year", year),
		zap.Float64("taxableIncome", taxableIncome),
		zap.Int("investors", len(investors)),
		zap.Float64("totalDelta", assessment.TotalDelta),
	)
	return assessment
}

func ownershipByInvestor(investors []Investor, ownership []Ownership) map[string]float64 {
	shares := make(map[string]float64, len(investors))
	if len(ownership) == 0 {
		if len(investors) == 0 {
			return shares
		}
		equal := constants.PercentageMultiplier / float64(len(investors))
		for _, investor := range investors {
			shares[investor.ID] = equal
		}
		return shares
	}
	for _, allocation := range ownership {
		shares[allocation.InvestorID] += mathutil.NonNegative(allocation.Percentage)
	}
	return shares
}
