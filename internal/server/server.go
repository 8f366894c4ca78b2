// Package server exposes the projection engine over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/metrics"
	"github.com/iwvelando/property-forecast/internal/optimizer"
	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	engine        *projection.Engine
	cache         *projection.Cache
	maxUploadSize int64
	concurrency   int
	version       string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	maxUploadSize := cfg.UploadSizeBytes()
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	ttl := cfg.CacheTTLDuration()
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLSeconds * time.Second
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		engine:        projection.NewEngine(logger, config.DefaultAssumptions()),
		cache:         projection.NewCache(ttl),
		maxUploadSize: maxUploadSize,
		concurrency:   cfg.BatchConcurrency,
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/projection", h.handleProjection)
		r.Post("/projection/upload", h.handleUpload)
		r.Post("/projection/batch", h.handleBatch)
		r.Post("/optimize", h.handleOptimize)
		r.Post("/config/export", h.handleConfigExport)
		r.Get("/defaults", h.handleDefaults)
		r.Get("/version", h.handleVersion)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type projectionRequest struct {
	Property    config.PropertyRecord `json:"property"`
	Assumptions *config.Assumptions   `json:"assumptions,omitempty"`
	From        int                   `json:"from,omitempty"`
	To          int                   `json:"to,omitempty"`
}

type projectionResponse struct {
	RunID string `json:"runId"`
	*projection.Result
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
	CSV           string                 `json:"csv"`
	Cached        bool                   `json:"cached"`
	Duration      string                 `json:"duration"`
}

type batchRequest struct {
	Requests []projectionRequest `json:"requests"`
}

type batchResponse struct {
	RunID    string                   `json:"runId"`
	Results  []projection.BatchResult `json:"results"`
	Duration string                   `json:"duration"`
}

type optimizeRequest struct {
	projectionRequest
	Optimizer *config.OptimizerConfig `json:"optimizer"`
}

type errorResponse struct {
	RunID  string                      `json:"runId,omitempty"`
	Error  string                      `json:"error"`
	Fields validation.ValidationErrors `json:"fields,omitempty"`
}

type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string {
	return e.err.Error()
}

func (e *requestError) Unwrap() error {
	return e.err
}

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	start := time.Now()
	runID := uuid.NewString()
	metrics.ProjectionsActive.Inc()
	defer metrics.ProjectionsActive.Dec()

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, runID, metrics.EndpointProjection, start, err, op)
		return
	}
	if err := config.ValidateRequestJSON(body); err != nil {
		h.fail(w, runID, metrics.EndpointProjection, start, err, op)
		return
	}

	var payload projectionRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		h.fail(w, runID, metrics.EndpointProjection, start, badRequest("failed to decode projection request: %v", err), op)
		return
	}

	h.project(w, runID, metrics.EndpointProjection, start, payload, nil, op)
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpload"
	start := time.Now()
	runID := uuid.NewString()
	metrics.ProjectionsActive.Inc()
	defer metrics.ProjectionsActive.Dec()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.fail(w, runID, metrics.EndpointUpload, start, uploadError(err, h.maxUploadSize), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, runID, metrics.EndpointUpload, start, badRequest("missing configuration file"), op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.fail(w, runID, metrics.EndpointUpload, start, fmt.Errorf("failed to read configuration: %w", err), op)
		return
	}
	if err := checkYAML(buf.Bytes()); err != nil {
		h.fail(w, runID, metrics.EndpointUpload, start, err, op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.fail(w, runID, metrics.EndpointUpload, start, badRequest("%v", err), op)
		return
	}

	payload := projectionRequest{
		Property:    cfg.Property,
		Assumptions: &cfg.Assumptions,
		From:        cfg.Projection.From,
		To:          cfg.Projection.To,
	}

	var summaries []optimization.Summary
	if cfg.Optimizer != nil {
		summary, err := h.optimize(payload, *cfg.Optimizer)
		if err != nil {
			h.fail(w, runID, metrics.EndpointUpload, start, err, op)
			return
		}
		payload.Property.MainLoan.Amount = summary.Value
		summaries = append(summaries, summary)
	}

	h.project(w, runID, metrics.EndpointUpload, start, payload, summaries, op, cfg.ValidateConfiguration()...)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	start := time.Now()
	runID := uuid.NewString()

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, runID, metrics.EndpointBatch, start, err, op)
		return
	}

	var payload batchRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		h.fail(w, runID, metrics.EndpointBatch, start, badRequest("failed to decode batch request: %v", err), op)
		return
	}
	if len(payload.Requests) == 0 {
		h.fail(w, runID, metrics.EndpointBatch, start, badRequest("batch contains no requests"), op)
		return
	}
	if len(payload.Requests) > constants.MaxBatchSize {
		h.fail(w, runID, metrics.EndpointBatch, start, badRequest("batch of %d exceeds the limit of %d", len(payload.Requests), constants.MaxBatchSize), op)
		return
	}
	metrics.BatchSize.Observe(float64(len(payload.Requests)))

	requests := make([]projection.Request, len(payload.Requests))
	for i, item := range payload.Requests {
		if err := config.ValidateRecord(item.Property); err != nil {
			h.fail(w, runID, metrics.EndpointBatch, start, fmt.Errorf("request %d: %w", i, err), op)
			return
		}
		requests[i] = item.toRequest(fmt.Sprintf("%s-%d", runID, i))
	}

	results, err := h.engine.ProjectBatch(r.Context(), requests, h.concurrency)
	if err != nil {
		h.fail(w, runID, metrics.EndpointBatch, start, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("batch projected",
		zap.String("op", op),
		zap.String("runId", runID),
		zap.Int("requests", len(requests)),
		zap.Duration("duration", elapsed),
	)
	metrics.Observe(metrics.EndpointBatch, metrics.OutcomeSuccess, start)
	h.writeJSON(w, http.StatusOK, batchResponse{RunID: runID, Results: results, Duration: elapsed.String()})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"
	start := time.Now()
	runID := uuid.NewString()

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, runID, metrics.EndpointOptimize, start, err, op)
		return
	}

	var payload optimizeRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		h.fail(w, runID, metrics.EndpointOptimize, start, badRequest("failed to decode optimize request: %v", err), op)
		return
	}
	if payload.Optimizer == nil {
		h.fail(w, runID, metrics.EndpointOptimize, start, badRequest("optimizer directive is required"), op)
		return
	}
	if err := config.ValidateRecord(payload.Property); err != nil {
		h.fail(w, runID, metrics.EndpointOptimize, start, err, op)
		return
	}

	summary, err := h.optimize(payload.projectionRequest, *payload.Optimizer)
	if err != nil {
		h.fail(w, runID, metrics.EndpointOptimize, start, err, op)
		return
	}

	payload.Property.MainLoan.Amount = summary.Value
	h.project(w, runID, metrics.EndpointOptimize, start, payload.projectionRequest, []optimization.Summary{summary}, op)
}

// handleConfigExport turns a JSON request into the equivalent YAML
// configuration file for the CLI.
func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	runID := uuid.NewString()

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, runID, metrics.EndpointExport, time.Now(), err, op)
		return
	}
	var payload optimizeRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		h.fail(w, runID, metrics.EndpointExport, time.Now(), badRequest("failed to decode configuration: %v", err), op)
		return
	}

	cfg := config.Configuration{
		Property:    payload.Property,
		Assumptions: config.DefaultAssumptions(),
		Projection:  config.ProjectionRange{From: payload.From, To: payload.To},
		Optimizer:   payload.Optimizer,
	}
	if payload.Assumptions != nil {
		cfg.Assumptions = *payload.Assumptions
	}
	cfg.Projection.Normalize()

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		h.fail(w, runID, metrics.EndpointExport, time.Now(), fmt.Errorf("failed to encode configuration: %w", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"property":    config.DefaultPropertyRecord(),
		"assumptions": config.DefaultAssumptions(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) optimize(payload projectionRequest, directive config.OptimizerConfig) (optimization.Summary, error) {
	engine := h.engine
	if payload.Assumptions != nil {
		engine = engine.WithAssumptions(*payload.Assumptions)
	}
	runner, err := optimizer.NewRunner(h.logger, engine)
	if err != nil {
		return optimization.Summary{}, err
	}
	summary, err := runner.Optimize(payload.Property, config.ProjectionRange{From: payload.From, To: payload.To}, directive)
	if err != nil {
		return optimization.Summary{}, badRequest("optimizer execution failed: %v", err)
	}
	return summary, nil
}

func (h *handler) project(w http.ResponseWriter, runID, endpoint string, start time.Time, payload projectionRequest, summaries []optimization.Summary, op string, extraWarnings ...string) {
	if err := config.ValidateRecord(payload.Property); err != nil {
		h.fail(w, runID, endpoint, start, err, op)
		return
	}

	result, hit, err := h.cache.Project(h.engine, payload.toRequest(runID))
	if err != nil {
		h.fail(w, runID, endpoint, start, err, op)
		return
	}
	metrics.CacheLookup(hit)

	csv, err := output.CSVString(result)
	if err != nil {
		h.fail(w, runID, endpoint, start, err, op)
		return
	}

	// Cached results are shared; warnings are merged into a copy.
	if len(extraWarnings) > 0 {
		copied := *result
		copied.Warnings = mergeWarnings(extraWarnings, result.Warnings)
		result = &copied
	}

	elapsed := time.Since(start)
	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.String("runId", runID),
		zap.Int("years", len(result.Years)),
		zap.Bool("cached", hit),
		zap.Duration("duration", elapsed),
	)
	metrics.Observe(endpoint, metrics.OutcomeSuccess, start)

	h.writeJSON(w, http.StatusOK, projectionResponse{
		RunID:         runID,
		Result:        result,
		Optimizations: summaries,
		CSV:           csv,
		Cached:        hit,
		Duration:      elapsed.String(),
	})
}

func (p projectionRequest) toRequest(id string) projection.Request {
	return projection.Request{
		ID:          id,
		Property:    p.Property,
		Assumptions: p.Assumptions,
		From:        p.From,
		To:          p.To,
	}
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		return nil, uploadError(err, h.maxUploadSize)
	}
	return body, nil
}

func uploadError(err error, limit int64) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return &requestError{
			status: http.StatusRequestEntityTooLarge,
			err:    fmt.Errorf("upload exceeds limit of %d bytes", limit),
		}
	}
	return badRequest("failed to read request: %v", err)
}

// checkYAML reports a syntax error in an uploaded configuration before it
// reaches viper, whose messages do not carry line numbers.
func checkYAML(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return badRequest("invalid YAML configuration: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return badRequest("configuration file is empty")
	}
	return nil
}

func mergeWarnings(groups ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, group := range groups {
		for _, warning := range group {
			if trimmed := strings.TrimSpace(warning); trimmed != "" && !seen[trimmed] {
				seen[trimmed] = true
				merged = append(merged, trimmed)
			}
		}
	}
	return merged
}

func (h *handler) fail(w http.ResponseWriter, runID, endpoint string, start time.Time, err error, op string) {
	status := http.StatusInternalServerError
	outcome := metrics.OutcomeError
	response := errorResponse{RunID: runID, Error: err.Error()}

	var reqErr *requestError
	var fields validation.ValidationErrors
	switch {
	case errors.As(err, &fields):
		status = http.StatusUnprocessableEntity
		outcome = metrics.OutcomeInvalid
		response.Fields = fields
		if isSchemaError(fields) {
			status = http.StatusBadRequest
		}
	case errors.As(err, &reqErr):
		status = reqErr.status
		outcome = metrics.OutcomeInvalid
	}

	metrics.Observe(endpoint, outcome, start)
	h.respondErrorWithOp(w, status, response, op)
}

func isSchemaError(fields validation.ValidationErrors) bool {
	for _, field := range fields {
		if field.Code == validation.CodeSchema {
			return true
		}
	}
	return false
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, response errorResponse, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.String("runId", response.RunID),
		zap.Int("status", status),
		zap.String("error", response.Error),
	)

	h.writeJSON(w, status, response)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
