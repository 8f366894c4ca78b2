package loans

import (
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Period holds the values for a single monthly repayment.
type Period struct {
	Month     int // months since the schedule started, 1-based
	TermMonth int // months since the loan was drawn, 1-based
	Status    RepaymentType
	Payment   float64
	Interest  float64
	Principal float64
	Balance   float64 // closing balance after this period
}

// YearSummary aggregates twelve periods of a schedule.
type YearSummary struct {
	Year           int
	Status         RepaymentType
	Payment        float64
	Interest       float64
	Principal      float64
	OpeningBalance float64
	ClosingBalance float64
}

// Schedule is a generated amortisation schedule. It is read-only once built.
type Schedule struct {
	loan    Loan
	periods []Period
	years   []YearSummary
}

// ScheduleGenerator builds amortisation schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate simulates the loan month by month for the given number of years.
func (g *ScheduleGenerator) Generate(loan Loan, years int) *Schedule {
	if years < 0 {
		years = 0
	}
	schedule := &Schedule{
		loan:    loan,
		periods: make([]Period, 0, years*constants.MonthsPerYear),
	}

	balance := mathutil.NonNegative(loan.Principal)
	term := loan.TermMonths()
	ioMonths := loan.ioMonths()
	elapsed := loan.ElapsedMonths
	if elapsed < 0 {
		elapsed = 0
	}

	var monthlyPayment float64
	converted := false

	for month := 1; month <= years*constants.MonthsPerYear; month++ {
		termMonth := elapsed + month
		period := Period{Month: month, TermMonth: termMonth, Status: PrincipalAndInterest}
		if termMonth <= ioMonths {
			period.Status = InterestOnly
		}

		switch {
		case balance <= 0:
			balance = 0
		case period.Status == InterestOnly:
			period.Interest = CalculateInterestPayment(balance, loan.InterestRate)
			period.Payment = period.Interest
		default:
			remaining := term - (termMonth - 1)
			if remaining <= 0 {
				g.logger.Debug("loan term elapsed, treating balance as repaid",
					zap.String("op", "loans.Generate"),
					zap.String("loan", loan.Name),
					zap.Int("termMonth", termMonth),
					zap.Float64("balance", balance),
				)
				balance = 0
				break
			}
			if !converted {
				monthlyPayment = CalculateMonthlyPayment(balance, loan.InterestRate, remaining)
				converted = true
				g.logger.Debug("principal and interest repayments start",
					zap.String("op", "loans.Generate"),
					zap.String("loan", loan.Name),
					zap.Int("termMonth", termMonth),
					zap.Int("remainingMonths", remaining),
					zap.Float64("monthlyPayment", monthlyPayment),
				)
			}

			period.Interest = CalculateInterestPayment(balance, loan.InterestRate)
			principal := mathutil.NonNegative(monthlyPayment - period.Interest)
			if remaining == 1 || principal > balance {
				principal = balance
			}
			period.Principal = principal
			period.Payment = period.Interest + principal
			balance -= principal
			if mathutil.Round(balance) <= 0 {
				// Avoid carrying machine error as a residual balance.
				balance = 0
			}
		}

		period.Balance = balance
		schedule.periods = append(schedule.periods, period)
	}

	schedule.years = summarise(schedule.periods, mathutil.NonNegative(loan.Principal), years)
	return schedule
}

func summarise(periods []Period, opening float64, years int) []YearSummary {
	summaries := make([]YearSummary, 0, years)
	for year := 1; year <= years; year++ {
		summary := YearSummary{Year: year, OpeningBalance: opening, ClosingBalance: opening}
		start := (year - 1) * constants.MonthsPerYear
		for _, period := range periods[start : start+constants.MonthsPerYear] {
			summary.Payment += period.Payment
			summary.Interest += period.Interest
			summary.Principal += period.Principal
			summary.ClosingBalance = period.Balance
			summary.Status = period.Status
		}
		opening = summary.ClosingBalance
		summaries = append(summaries, summary)
	}
	return summaries
}

// Months returns a copy of the monthly periods.
func (s *Schedule) Months() []Period {
	out := make([]Period, len(s.periods))
	copy(out, s.periods)
	return out
}

// Years returns the number of generated years.
func (s *Schedule) Years() int {
	return len(s.years)
}

// Year returns the summary for a 1-based year. Years outside the generated
// range report no repayments and carry the nearest known balance.
func (s *Schedule) Year(year int) YearSummary {
	if year >= 1 && year <= len(s.years) {
		return s.years[year-1]
	}

	balance := mathutil.NonNegative(s.loan.Principal)
	status := PrincipalAndInterest
	if s.loan.ioMonths() > s.loan.ElapsedMonths {
		status = InterestOnly
	}
	if year > len(s.years) && len(s.years) > 0 {
		last := s.years[len(s.years)-1]
		balance = last.ClosingBalance
		status = last.Status
	}
	return YearSummary{Year: year, Status: status, OpeningBalance: balance, ClosingBalance: balance}
}

// TotalInterest sums the interest of every generated period.
func (s *Schedule) TotalInterest() float64 {
	total := 0.0
	for _, period := range s.periods {
		total += period.Interest
	}
	return total
}
