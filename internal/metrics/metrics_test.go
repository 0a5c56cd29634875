package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/torus/internal/optimization"
	"github.com/copyleftdev/torus/internal/optimization/search"
	"github.com/copyleftdev/torus/internal/torus"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveExpansion(4, 10, 3)
	m.ObserveExpansion(2, 10, 0)
	m.ObserveSearch(50*time.Millisecond, 2, 4, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatesVisited))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.CandidatesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CandidatesQueued))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.BestScore))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesCompleted.WithLabelValues("true")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SearchesCompleted.WithLabelValues("false")))
}

func TestRecorderWiredIntoSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	result, err := search.New(search.WithRecorder(m)).Optimize(context.Background(), optimization.Problem{
		Initial: torus.Configuration{{0, 0}},
		Sizes:   []int{2, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(result.Visited), testutil.ToFloat64(m.StatesVisited))
	assert.Equal(t, float64(result.Proposed), testutil.ToFloat64(m.CandidatesTotal))
	assert.Equal(t, float64(result.Visited-1), testutil.ToFloat64(m.CandidatesQueued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesCompleted.WithLabelValues("false")))

	count, err := testutil.GatherAndCount(reg, "torus_search_state_score")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
