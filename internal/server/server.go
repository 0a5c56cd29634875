package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/torus/internal/config"
	apperrors "github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/job"
	"github.com/copyleftdev/torus/internal/logging"
	"github.com/copyleftdev/torus/internal/metrics"
	"github.com/copyleftdev/torus/internal/optimization"
	"github.com/copyleftdev/torus/internal/optimization/search"
	"github.com/copyleftdev/torus/internal/pointcloud"
	"github.com/copyleftdev/torus/internal/torus"
)

// Logger defines the logging interface used by the server
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Search job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// SearchState tracks one search job. Fields are guarded by the server's
// searchesMu; the optimizer has its own locking.
type SearchState struct {
	ID          string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time
	Problem     optimization.Problem
	Optimizer   optimization.Optimizer
	Result      *optimization.OptimizationResult
	Err         string
	CancelFunc  context.CancelFunc
}

// Server implements the HTTP and JSON-RPC API of the search service. It
// runs each search in its own goroutine, at most cfg.Jobs.MaxRunning at a
// time.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *metrics.Metrics
	slots   chan struct{}
	wg      sync.WaitGroup

	searches   map[string]*SearchState
	searchesMu sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics makes the server report search and job metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a server instance with the given config and logger.
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	maxRunning := cfg.Jobs.MaxRunning
	if maxRunning < 1 {
		maxRunning = 1
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		slots:    make(chan struct{}, maxRunning),
		searches: make(map[string]*SearchState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleStart)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// startRequest describes a search either as bare points plus grid sizes or
// as a raw point matrix with an optional parameter column.
type startRequest struct {
	Points  [][]int            `json:"points,omitempty"`
	Sizes   []int              `json:"sizes,omitempty"`
	Matrix  [][]int            `json:"matrix,omitempty"`
	Param   *pointcloud.Column `json:"param,omitempty"`
	History bool               `json:"history,omitempty"`
}

func (r startRequest) problem() (optimization.Problem, error) {
	if len(r.Matrix) > 0 {
		return job.Prepare(r.Matrix, r.Param)
	}
	p := optimization.Problem{
		Initial: torus.FromPoints(r.Points),
		Sizes:   r.Sizes,
	}
	if len(p.Sizes) == 0 && len(r.Points) > 0 {
		sizes, err := pointcloud.Dimensions(r.Points, -1)
		if err != nil {
			return optimization.Problem{}, err
		}
		p.Sizes = sizes
	}
	return p, p.Validate()
}

type idRequest struct {
	ID string `json:"search_id"`
}

// startSearch validates req and launches the search in the background.
func (s *Server) startSearch(req startRequest) (map[string]interface{}, error) {
	problem, err := req.problem()
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid search").
			WithComponent("server").WithOperation("start").WithKind(apperrors.Invalid)
	}

	id := uuid.NewString()
	logger := s.logger.WithFields(map[string]interface{}{"search_id": id})

	opts := []search.Option{
		search.WithLogger(logging.NewZapLogger(logger)),
		search.WithHistory(req.History),
	}
	if s.metrics != nil {
		opts = append(opts, search.WithRecorder(s.metrics))
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &SearchState{
		ID:          id,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Problem:     problem,
		Optimizer:   search.New(opts...),
		CancelFunc:  cancel,
	}

	s.searchesMu.Lock()
	s.searches[id] = state
	s.searchesMu.Unlock()

	s.wg.Add(1)
	go s.runSearch(ctx, state)

	logger.Info("Search queued", map[string]interface{}{
		"points": len(problem.Initial),
		"sizes":  problem.Sizes,
	})

	return map[string]interface{}{
		"search_id": id,
		"status":    StatusPending,
	}, nil
}

// runSearch waits for a free slot and runs the search.
func (s *Server) runSearch(ctx context.Context, state *SearchState) {
	defer s.wg.Done()
	defer state.CancelFunc()

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		s.finish(state, nil, ctx.Err())
		return
	}

	s.searchesMu.Lock()
	if state.Status == StatusPending {
		state.Status = StatusRunning
		state.LastUpdated = time.Now()
	}
	s.searchesMu.Unlock()

	if s.metrics != nil {
		s.metrics.JobsRunning.Inc()
		defer s.metrics.JobsRunning.Dec()
	}

	result, err := state.Optimizer.Optimize(ctx, state.Problem)
	s.finish(state, result, err)
}

func (s *Server) finish(state *SearchState, result *optimization.OptimizationResult, err error) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	now := time.Now()
	state.LastUpdated = now
	if state.EndTime == nil {
		state.EndTime = &now
	}

	switch {
	case state.Status == StatusCancelled:
	case err != nil:
		state.Status = StatusFailed
		state.Err = err.Error()
		s.logger.Error("Search failed", map[string]interface{}{
			"search_id": state.ID,
			"error":     err.Error(),
		})
	default:
		state.Status = StatusCompleted
		state.Result = result
		s.logger.Info("Search completed", map[string]interface{}{
			"search_id":  state.ID,
			"visited":    result.Visited,
			"best_score": result.BestScore(),
			"improved":   result.Improved,
		})
	}
}

// searchStatus returns the status document of a search.
func (s *Server) searchStatus(id string) (map[string]interface{}, error) {
	s.searchesMu.RLock()
	defer s.searchesMu.RUnlock()

	state, ok := s.searches[id]
	if !ok {
		return nil, notFound("status", id)
	}

	progress := state.Optimizer.Progress()
	response := map[string]interface{}{
		"search_id":   state.ID,
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
		"progress": map[string]interface{}{
			"visited":    progress.Visited,
			"queued":     progress.Queued,
			"best_score": progress.BestScore,
		},
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Err != "" {
		response["error"] = state.Err
	}
	if best := state.Optimizer.GetBestSolution(); best != nil {
		response["current_best"] = solutionJSON(best)
	}
	if res := state.Result; res != nil {
		result := map[string]interface{}{
			"initial":    solutionJSON(res.Initial),
			"best_score": res.BestScore(),
			"improved":   res.Improved,
			"visited":    res.Visited,
			"proposed":   res.Proposed,
			"duplicates": res.Duplicates,
			"stats":      res.Stats,
		}
		if res.Best != nil {
			result["best"] = solutionJSON(res.Best)
		}
		if len(res.History) > 0 {
			history := make([]map[string]interface{}, len(res.History))
			for i, e := range res.History {
				history[i] = map[string]interface{}{
					"iteration":   e.Iteration,
					"score":       e.Score,
					"fingerprint": fmt.Sprintf("%016x", e.Fingerprint),
				}
			}
			result["history"] = history
		}
		response["result"] = result
	}
	return response, nil
}

func notFound(op, id string) error {
	return apperrors.Errorf("search %s not found", id).
		WithComponent("server").WithOperation(op).WithKind(apperrors.NotFound)
}

func solutionJSON(sol *optimization.Solution) map[string]interface{} {
	return map[string]interface{}{
		"points":      sol.Configuration.Points(),
		"score":       sol.Score,
		"fingerprint": fmt.Sprintf("%016x", sol.Fingerprint),
	}
}

// cancelSearch stops a pending or running search.
func (s *Server) cancelSearch(id string) error {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	state, ok := s.searches[id]
	if !ok {
		return notFound("cancel", id)
	}
	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return apperrors.Errorf("search %s already %s", id, state.Status).
			WithComponent("server").WithOperation("cancel").WithKind(apperrors.Conflict)
	}

	state.CancelFunc()
	state.Optimizer.Stop()

	now := time.Now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Search cancelled", map[string]interface{}{"search_id": id})
	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", request.ID)
		return
	}

	var (
		result interface{}
		err    error
	)
	switch request.Method {
	case "search.start":
		var req startRequest
		if err = decodeParams(request.Params, &req); err == nil {
			result, err = s.startSearch(req)
		}
	case "search.status":
		var req idRequest
		if err = decodeParams(request.Params, &req); err == nil {
			result, err = s.searchStatus(req.ID)
		}
	case "search.cancel":
		var req idRequest
		if err = decodeParams(request.Params, &req); err == nil {
			if err = s.cancelSearch(req.ID); err == nil {
				result = map[string]string{"status": StatusCancelled}
			}
		}
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := -32000
		if apperrors.KindOf(err) == apperrors.Invalid {
			code = -32602
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

// decodeParams accepts params either as an object or as a one-element array
// holding the object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return invalidParams(apperrors.New("missing params"))
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return invalidParams(apperrors.New("expected a parameter object"))
		}
		raw = list[0]
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidParams(err)
	}
	return nil
}

func invalidParams(err error) error {
	return apperrors.Wrap(err, "invalid params").WithComponent("server").WithKind(apperrors.Invalid)
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("JSON-RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

// Close cancels all searches and waits for their goroutines to exit.
func (s *Server) Close() error {
	s.searchesMu.Lock()
	for _, state := range s.searches {
		state.CancelFunc()
	}
	s.searchesMu.Unlock()

	s.wg.Wait()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	writeJSON(w, kind.HTTPStatus(), map[string]interface{}{
		"error": err.Error(),
		"kind":  kind.String(),
	})
}

// handleStart handles POST /api/v1/search
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(err, "invalid request body").WithComponent("server").WithKind(apperrors.Invalid))
		return
	}

	result, err := s.startSearch(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// handleStatus handles GET /api/v1/status/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.searchStatus(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCancel handles DELETE /api/v1/search/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cancelSearch(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancellation requested"})
}
