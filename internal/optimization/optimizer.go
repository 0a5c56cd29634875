package optimization

import (
	"context"

	"github.com/copyleftdev/torus/internal/torus"
)

// Optimizer defines the interface for arrangement search strategies
type Optimizer interface {
	// Optimize runs the search to completion or until ctx is done
	Optimize(ctx context.Context, problem Problem) (*OptimizationResult, error)

	// GetBestSolution returns the best solution found so far
	GetBestSolution() *Solution

	// GetHistory returns the recorded evaluations, if history is enabled
	GetHistory() []Evaluation

	// Progress returns a snapshot of the traversal counters
	Progress() Progress

	// Stop gracefully stops the search
	Stop()
}

// Problem is a starting arrangement of marked cells on a torus.
type Problem struct {
	// Initial is the starting configuration. It is copied, never mutated.
	Initial torus.Configuration

	// Sizes gives the extent of every axis; coordinates wrap at Sizes[i].
	Sizes []int
}

// Validate rejects problems the search cannot run on. The returned error
// wraps one of the torus sentinel errors.
func (p Problem) Validate() error {
	if err := torus.Validate(p.Initial, p.Sizes); err != nil {
		return InvalidProblem(err)
	}
	return nil
}

// Solution is a scored configuration
type Solution struct {
	Configuration torus.Configuration
	Score         int
	Fingerprint   uint64
}

// NewSolution scores c and takes a canonical copy of it.
func NewSolution(c torus.Configuration, score int) *Solution {
	canon := c.Canonical()
	return &Solution{
		Configuration: canon,
		Score:         score,
		Fingerprint:   canon.Fingerprint(),
	}
}

// Evaluation records one expanded configuration
type Evaluation struct {
	// Iteration is the expansion order; 0 is the initial configuration.
	Iteration   int
	Score       int
	Fingerprint uint64
}

// Progress is a point-in-time view of a running search
type Progress struct {
	Visited   int
	Queued    int
	BestScore int
}

// OptimizationResult contains the result of a search run
type OptimizationResult struct {
	// Initial is the canonical starting configuration and its score.
	Initial *Solution

	// Best is the first configuration whose score strictly exceeded every
	// score before it. It is nil when nothing beat the initial configuration.
	Best *Solution

	// Improved reports whether Best is set.
	Improved bool

	// Visited counts expanded configurations, the initial one included.
	Visited int

	// Proposed counts generated candidates; Duplicates counts the ones
	// rejected because they were already visited or queued.
	Proposed   int
	Duplicates int

	Stats   ScoreStats
	History []Evaluation
}

// BestScore returns the best score, falling back to the initial score when
// nothing improved on it.
func (r *OptimizationResult) BestScore() int {
	if r.Best != nil {
		return r.Best.Score
	}
	return r.Initial.Score
}

// BestConfiguration returns Best's configuration, or the initial one when
// nothing improved on it.
func (r *OptimizationResult) BestConfiguration() torus.Configuration {
	if r.Best != nil {
		return r.Best.Configuration
	}
	return r.Initial.Configuration
}
