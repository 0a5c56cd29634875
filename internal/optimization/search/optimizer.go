// Package search implements an exhaustive breadth-first optimizer over row
// shifts of a configuration on a torus.
//
// Starting from the initial configuration, every expansion proposes all
// single-step shifts of every row along every axis. Candidates are
// canonicalized and queued at most once, so each reachable configuration is
// scored exactly once. The state space grows exponentially with the number
// of points and axes; the search makes no attempt to prune it.
package search

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/torus/internal/optimization"
	"github.com/copyleftdev/torus/internal/torus"
)

// Recorder receives search progress. Implementations must be safe to call
// from the goroutine running the search.
type Recorder interface {
	// ObserveExpansion is called once per visited configuration with its
	// score and the number of candidates it proposed and queued.
	ObserveExpansion(score, proposed, queued int)
	// ObserveSearch is called once when a search runs to completion.
	ObserveSearch(elapsed time.Duration, visited, bestScore int, improved bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExpansion(int, int, int)              {}
func (nopRecorder) ObserveSearch(time.Duration, int, int, bool) {}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger used for search lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the sink for progress metrics.
func WithRecorder(r Recorder) Option {
	return func(o *Optimizer) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithHistory enables recording one Evaluation per visited configuration.
func WithHistory(enabled bool) Option {
	return func(o *Optimizer) {
		o.recordHistory = enabled
	}
}

// Optimizer is a breadth-first row-shift search. An Optimizer runs one
// search at a time; its accessors may be called concurrently with Optimize.
type Optimizer struct {
	logger        *zap.Logger
	recorder      Recorder
	recordHistory bool

	mu       sync.RWMutex
	best     *optimization.Solution
	history  []optimization.Evaluation
	progress optimization.Progress
	cancel   context.CancelFunc
}

var _ optimization.Optimizer = (*Optimizer)(nil)

// New creates an Optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize explores every configuration reachable from problem.Initial and
// returns the best one. Invalid problems are rejected before any work
// starts. The search only stops early when ctx is done.
func (o *Optimizer) Optimize(ctx context.Context, problem optimization.Problem) (*optimization.OptimizationResult, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := time.Now()
	sizes := slices.Clone(problem.Sizes)
	initial := optimization.NewSolution(problem.Initial, torus.CountNeighborPairs(problem.Initial))

	o.mu.Lock()
	o.cancel = cancel
	o.best = initial
	o.history = nil
	o.progress = optimization.Progress{BestScore: initial.Score}
	o.mu.Unlock()

	o.logger.Info("search started",
		zap.Int("points", len(initial.Configuration)),
		zap.Ints("sizes", sizes),
		zap.Int("initial_score", initial.Score),
		zap.Int("candidates_per_state", CandidateCount(sizes)),
	)

	result := &optimization.OptimizationResult{Initial: initial}
	scores := optimization.ScoreHistogram{}
	f := newFrontier()

	f.markSeen(initial.Configuration)
	o.expand(f, 0, initial.Configuration, initial.Score, sizes, scores)

	bestScore := initial.Score
	for iteration := 1; f.len() > 0; iteration++ {
		select {
		case <-ctx.Done():
			o.logger.Warn("search interrupted",
				zap.Int("visited", iteration-1),
				zap.Int("queued", f.len()),
				zap.Error(ctx.Err()),
			)
			return nil, optimization.Interrupted(ctx.Err(), iteration-1, f.len())
		default:
		}

		state := f.pop()
		score := o.expand(f, iteration, state, -1, sizes, scores)
		if score <= bestScore {
			continue
		}

		bestScore = score
		result.Best = &optimization.Solution{
			Configuration: state,
			Score:         score,
			Fingerprint:   state.Fingerprint(),
		}
		o.mu.Lock()
		o.best = result.Best
		o.mu.Unlock()

		o.logger.Debug("new best configuration",
			zap.Int("iteration", iteration),
			zap.Int("score", score),
			zap.Uint64("fingerprint", result.Best.Fingerprint),
		)
	}

	result.Improved = result.Best != nil
	result.Stats = scores.Stats()
	result.Visited = result.Stats.Count
	result.Proposed = f.proposed
	result.Duplicates = f.duplicates
	result.History = o.GetHistory()

	elapsed := time.Since(started)
	o.recorder.ObserveSearch(elapsed, result.Visited, result.BestScore(), result.Improved)
	o.logger.Info("search finished",
		zap.Int("visited", result.Visited),
		zap.Int("proposed", result.Proposed),
		zap.Int("best_score", result.BestScore()),
		zap.Bool("improved", result.Improved),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// expand marks state visited, proposes all of its candidates and scores it.
// A non-negative score is taken as already computed.
func (o *Optimizer) expand(f *frontier, iteration int, state torus.Configuration, score int, sizes []int, scores optimization.ScoreHistogram) int {
	proposed, queued := f.proposed, f.len()
	expand(state, sizes, f.propose)
	if score < 0 {
		score = torus.CountNeighborPairs(state)
	}
	scores.Add(score)
	o.recorder.ObserveExpansion(score, f.proposed-proposed, f.len()-queued)

	o.mu.Lock()
	o.progress.Visited++
	o.progress.Queued = f.len()
	if score > o.progress.BestScore {
		o.progress.BestScore = score
	}
	if o.recordHistory {
		o.history = append(o.history, optimization.Evaluation{
			Iteration:   iteration,
			Score:       score,
			Fingerprint: state.Fingerprint(),
		})
	}
	o.mu.Unlock()

	return score
}

// GetBestSolution returns the highest-scoring configuration seen so far,
// the initial one included. It returns nil before the first search.
func (o *Optimizer) GetBestSolution() *optimization.Solution {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.best
}

// GetHistory returns a copy of the recorded evaluations.
func (o *Optimizer) GetHistory() []optimization.Evaluation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.history)
}

// Progress returns the traversal counters of the current or last search.
func (o *Optimizer) Progress() optimization.Progress {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.progress
}

// Stop cancels a running search.
func (o *Optimizer) Stop() {
	o.mu.RLock()
	cancel := o.cancel
	o.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}
