package projection

import (
	"context"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request is one projection to run. A nil Assumptions uses the engine's.
type Request struct {
	ID          string                `json:"id,omitempty"`
	Property    config.PropertyRecord `json:"property"`
	Assumptions *config.Assumptions   `json:"assumptions,omitempty"`
	From        int                   `json:"from,omitempty"`
	To          int                   `json:"to,omitempty"`
}

// Range returns the normalised year range of the request.
func (r Request) Range() (int, int) {
	rng := config.ProjectionRange{From: r.From, To: r.To}
	rng.Normalize()
	return rng.From, rng.To
}

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	ID     string  `json:"id,omitempty"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ProjectRequest runs a single request, applying its assumptions if set.
func (e *Engine) ProjectRequest(req Request) (*Result, error) {
	engine := e
	if e != nil && req.Assumptions != nil {
		engine = e.WithAssumptions(*req.Assumptions)
	}
	from, to := req.Range()
	return engine.Project(req.Property, from, to)
}

// ProjectBatch projects independent requests concurrently, at most
// concurrency at a time. Results keep the order of requests. A failed
// request is reported in its BatchResult; only cancellation of ctx fails the
// batch.
func (e *Engine) ProjectBatch(ctx context.Context, requests []Request, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].ID = req.ID
			result, err := e.ProjectRequest(req)
			if err != nil {
				e.logger.Warn("batch projection failed",
					zap.String("op", "projection.ProjectBatch"),
					zap.String("id", req.ID),
					zap.Error(err),
				)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
