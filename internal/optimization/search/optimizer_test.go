package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/copyleftdev/torus/internal/optimization"
	"github.com/copyleftdev/torus/internal/torus"
)

type countingRecorder struct {
	expansions int
	proposed   int
	queued     int
	searches   int
	lastBest   int
	improved   bool
}

func (r *countingRecorder) ObserveExpansion(score, proposed, queued int) {
	r.expansions++
	r.proposed += proposed
	r.queued += queued
}

func (r *countingRecorder) ObserveSearch(_ time.Duration, _ int, bestScore int, improved bool) {
	r.searches++
	r.lastBest = bestScore
	r.improved = improved
}

func TestOptimizeSinglePointNeverImproves(t *testing.T) {
	opt := New(WithLogger(zaptest.NewLogger(t)))
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{0, 0}},
		Sizes:   []int{2, 2},
	})
	require.NoError(t, err)

	assert.False(t, result.Improved)
	assert.Nil(t, result.Best)
	assert.Equal(t, 0, result.Initial.Score)
	assert.Equal(t, 0, result.BestScore())
	assert.Equal(t, torus.Configuration{{0, 0}}, result.BestConfiguration())
	assert.Equal(t, 4, result.Visited, "a single point can reach every cell")
}

func TestOptimizeRotationsOfPair(t *testing.T) {
	opt := New(WithHistory(true))
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{0, 0}, {1, 0}},
		Sizes:   []int{3, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Visited)
	assert.Equal(t, 2, result.Initial.Score)
	assert.Equal(t, 2, result.BestScore())
	assert.False(t, result.Improved)
	assert.Nil(t, result.Best)

	// The rotation {(0,0), (2,0)} straddles the wrap boundary and scores 0.
	require.Len(t, result.History, 3)
	assert.Equal(t, []int{2, 2, 0}, historyScores(result.History))
	assert.Equal(t, 3, result.Stats.Count)
	assert.Equal(t, 0, result.Stats.Min)
	assert.Equal(t, 2, result.Stats.Max)
	assert.InDelta(t, 4.0/3.0, result.Stats.Mean, 1e-12)

	assert.Equal(t, 3*CandidateCount([]int{3, 1}), result.Proposed)
	assert.Equal(t, result.Proposed-2, result.Duplicates)
}

func TestOptimizeFindsImprovement(t *testing.T) {
	opt := New()
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{2}, {0}},
		Sizes:   []int{3},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Initial.Score)
	require.True(t, result.Improved)
	require.NotNil(t, result.Best)
	assert.Equal(t, 2, result.Best.Score)
	// +1 shift is proposed first and is the first strict improvement
	assert.Equal(t, torus.Configuration{{0}, {1}}, result.Best.Configuration)
	assert.Equal(t, result.Best.Configuration.Fingerprint(), result.Best.Fingerprint)
	assert.Equal(t, 3, result.Visited)
	assert.Equal(t, result.Best, opt.GetBestSolution())
}

func TestOptimizeCubeMinusVertex(t *testing.T) {
	var initial torus.Configuration
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				if x+y+z < 3 {
					initial = append(initial, torus.Point{x, y, z})
				}
			}
		}
	}

	opt := New(WithHistory(true))
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: initial,
		Sizes:   []int{2, 2, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.Visited, "the hole can move to any of the 8 cells")
	assert.Equal(t, 18, result.BestScore())
	assert.Equal(t, torus.CountNeighborPairs(result.BestConfiguration()), result.BestScore())
	assert.Len(t, result.BestConfiguration(), 7)
	assertVisitedOnce(t, result)
}

func TestOptimizeBestIsReachableAndReplayable(t *testing.T) {
	sizes := []int{3, 3}
	initial := torus.Configuration{{0, 0}, {2, 2}, {1, 0}}

	opt := New(WithHistory(true))
	result, err := opt.Optimize(context.Background(), optimization.Problem{Initial: initial, Sizes: sizes})
	require.NoError(t, err)
	require.True(t, result.Improved)

	best := result.Best.Configuration
	assert.Equal(t, torus.CountNeighborPairs(best), result.Best.Score)
	assert.Greater(t, result.Best.Score, result.Initial.Score)
	assert.Len(t, best, len(initial))
	assert.True(t, best.IsCanonical())
	require.NoError(t, torus.Validate(best, sizes))

	// Independently walk the shift graph to confirm best is reachable.
	reachable := map[string]bool{initial.Canonical().Key(): true}
	queue := []torus.Configuration{initial.Canonical()}
	for len(queue) > 0 && !reachable[best.Key()] {
		c := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(c, sizes) {
			n = n.Canonical()
			if !reachable[n.Key()] {
				reachable[n.Key()] = true
				queue = append(queue, n)
			}
		}
	}
	assert.True(t, reachable[best.Key()])
	assertVisitedOnce(t, result)
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	initial := torus.Configuration{{1, 1}, {0, 0}}
	_, err := New().Optimize(context.Background(), optimization.Problem{
		Initial: initial,
		Sizes:   []int{2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, torus.Configuration{{1, 1}, {0, 0}}, initial)
}

func TestOptimizeRejectsInvalidProblems(t *testing.T) {
	tests := []struct {
		name     string
		problem  optimization.Problem
		expected error
	}{
		{"empty", optimization.Problem{Sizes: []int{2}}, torus.ErrEmptyConfiguration},
		{"mismatch", optimization.Problem{Initial: torus.Configuration{{0}}, Sizes: []int{2, 2}}, torus.ErrDimensionMismatch},
		{"out of bounds", optimization.Problem{Initial: torus.Configuration{{0, 5}}, Sizes: []int{2, 2}}, torus.ErrOutOfBounds},
		{"degenerate", optimization.Problem{Initial: torus.Configuration{{0, 0}}, Sizes: []int{2, 0}}, torus.ErrDegenerateAxis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			result, err := New(WithRecorder(rec)).Optimize(context.Background(), tt.problem)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.expected))
			assert.Zero(t, rec.expansions, "no search work before validation")
		})
	}
}

func TestOptimizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Optimize(ctx, optimization.Problem{
		Initial: torus.Configuration{{0}, {2}},
		Sizes:   []int{3},
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizeReportsToRecorder(t *testing.T) {
	rec := &countingRecorder{}
	opt := New(WithRecorder(rec))
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{0}, {2}},
		Sizes:   []int{3},
	})
	require.NoError(t, err)

	assert.Equal(t, result.Visited, rec.expansions)
	assert.Equal(t, result.Proposed, rec.proposed)
	assert.Equal(t, result.Visited-1, rec.queued, "every state but the initial one was queued once")
	assert.Equal(t, 1, rec.searches)
	assert.Equal(t, 2, rec.lastBest)
	assert.True(t, rec.improved)

	progress := opt.Progress()
	assert.Equal(t, result.Visited, progress.Visited)
	assert.Equal(t, 0, progress.Queued)
	assert.Equal(t, 2, progress.BestScore)
}

func TestHistoryDisabledByDefault(t *testing.T) {
	opt := New()
	result, err := opt.Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{0, 0}},
		Sizes:   []int{2, 2},
	})
	require.NoError(t, err)
	assert.Empty(t, result.History)
	assert.Empty(t, opt.GetHistory())
}

func TestStopBeforeOptimize(t *testing.T) {
	opt := New()
	assert.NotPanics(t, opt.Stop)
	assert.Nil(t, opt.GetBestSolution())
}

func TestNeighbors(t *testing.T) {
	sizes := []int{2, 3, 4}
	c := torus.Configuration{{0, 0, 0}, {1, 2, 3}}
	neighbors := Neighbors(c, sizes)

	assert.Equal(t, 2*(12+8+6), CandidateCount(sizes))
	assert.Len(t, neighbors, CandidateCount(sizes))
	for _, n := range neighbors {
		assert.Len(t, n, len(c))
		assert.NoError(t, torus.Validate(n, sizes))
	}
	assert.Equal(t, torus.Configuration{{0, 0, 0}, {1, 2, 3}}, c)

	// first candidate shifts row (y=0, z=0) along x by +1
	assert.Equal(t, torus.Configuration{{1, 0, 0}, {1, 2, 3}}, neighbors[0])
}

func historyScores(history []optimization.Evaluation) []int {
	out := make([]int, len(history))
	for i, e := range history {
		out[i] = e.Score
	}
	return out
}

func assertVisitedOnce(t *testing.T, result *optimization.OptimizationResult) {
	t.Helper()
	require.Len(t, result.History, result.Visited)
	seen := make(map[uint64]bool, len(result.History))
	for i, e := range result.History {
		assert.Equal(t, i, e.Iteration)
		assert.False(t, seen[e.Fingerprint], "configuration %x visited twice", e.Fingerprint)
		seen[e.Fingerprint] = true
	}
}
