// Package optimizer sizes the main loan against a cash flow floor.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"go.uber.org/zap"
)

// Runner evaluates optimizer directives with a projection engine.
type Runner struct {
	logger *zap.Logger
	engine *projection.Engine
}

type evaluation struct {
	value     float64
	worstCash float64
	worstYear int
	floor     float64
}

func (e evaluation) feasible() bool {
	return e.worstCash >= e.floor
}

func (e evaluation) headroom() float64 {
	return e.worstCash - e.floor
}

// NewRunner constructs a Runner around engine.
func NewRunner(logger *zap.Logger, engine *projection.Engine) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("projection engine cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, engine: engine}, nil
}

// Run executes the configuration's optimizer directive, if any, and writes
// the chosen loan amount back into conf.Property.
func (r *Runner) Run(conf *config.Configuration) (*optimization.Summary, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if conf.Optimizer == nil {
		return nil, nil
	}
	summary, err := r.Optimize(conf.Property, conf.Projection, *conf.Optimizer)
	if err != nil {
		return nil, err
	}
	conf.Property.MainLoan.Amount = summary.Value
	return &summary, nil
}

// Optimize finds the largest main loan amount within the directive's bounds
// whose worst annual after-tax cash flow over rng stays at or above the floor.
// Worst cash flow falls as the loan grows, so the search is a bisection.
func (r *Runner) Optimize(record config.PropertyRecord, rng config.ProjectionRange, cfg config.OptimizerConfig) (optimization.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return optimization.Summary{}, err
	}
	rng.Normalize()

	minVal, maxVal := *cfg.Min, *cfg.Max
	summary := optimization.Summary{
		Field:    cfg.Field,
		Original: record.MainLoan.Amount,
		Floor:    cfg.Floor,
	}

	lower, err := r.evaluate(record, rng, minVal, cfg.Floor)
	if err != nil {
		return optimization.Summary{}, err
	}
	if !lower.feasible() {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"unable to keep cash flow above %s within bounds %s to %s",
			format.Currency(cfg.Floor), format.Currency(minVal), format.Currency(maxVal)))
		r.finish(&summary, lower, 0, false)
		return summary, nil
	}

	upper, err := r.evaluate(record, rng, maxVal, cfg.Floor)
	if err != nil {
		return optimization.Summary{}, err
	}
	if upper.feasible() {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"maximum bound %s already satisfies the floor", format.Currency(maxVal)))
		r.finish(&summary, upper, 0, true)
		return summary, nil
	}

	best := lower
	iterations := 0
	low, high := lower.value, upper.value
	for iterations < cfg.MaxIterations && high-low > cfg.Tolerance {
		mid := low + (high-low)/2
		eval, err := r.evaluate(record, rng, mid, cfg.Floor)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if eval.feasible() {
			best = eval
			low = mid
		} else {
			high = mid
		}
	}

	converged := high-low <= cfg.Tolerance
	if !converged {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"stopped after %d iterations with a %s search window", iterations, format.Currency(high-low)))
	}
	r.finish(&summary, best, iterations, converged)
	return summary, nil
}

func (r *Runner) finish(summary *optimization.Summary, eval evaluation, iterations int, converged bool) {
	summary.Value = eval.value
	summary.WorstCashFlow = eval.worstCash
	summary.WorstYear = eval.worstYear
	summary.Headroom = eval.headroom()
	summary.Iterations = iterations
	summary.Converged = converged

	r.logger.Info("optimizer adjusted main loan amount",
		zap.String("op", "optimizer.Optimize"),
		zap.String("field", summary.Field),
		zap.Float64("original", summary.Original),
		zap.Float64("optimized", summary.Value),
		zap.Float64("floor", summary.Floor),
		zap.Float64("worstCashFlow", summary.WorstCashFlow),
		zap.Int("worstYear", summary.WorstYear),
		zap.Float64("headroom", summary.Headroom),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
}

func (r *Runner) evaluate(record config.PropertyRecord, rng config.ProjectionRange, amount, floor float64) (evaluation, error) {
	amount = math.Floor(amount*100) / 100
	record.MainLoan.Amount = amount

	result, err := r.engine.Project(record, rng.From, rng.To)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer projection at %s failed: %w", format.Currency(amount), err)
	}

	worst, year := worstCashFlow(result, rng)
	r.logger.Debug("optimizer evaluated candidate",
		zap.String("op", "optimizer.evaluate"),
		zap.Float64("amount", amount),
		zap.Float64("worstCashFlow", worst),
		zap.Int("worstYear", year),
	)
	return evaluation{value: amount, worstCash: worst, worstYear: year, floor: floor}, nil
}

// worstCashFlow returns the lowest operating-year after-tax cash flow in rng.
func worstCashFlow(result *projection.Result, rng config.ProjectionRange) (float64, int) {
	worst := math.Inf(1)
	worstYear := 0
	for _, row := range result.Years {
		if row.Year < rng.From || row.Year > rng.To {
			continue
		}
		if row.AfterTaxCashFlow < worst {
			worst = row.AfterTaxCashFlow
			worstYear = row.Year
		}
	}
	if worstYear == 0 {
		return 0, 0
	}
	return worst, worstYear
}
