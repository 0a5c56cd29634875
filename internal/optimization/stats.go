package optimization

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ScoreStats summarizes the scores of every visited configuration.
type ScoreStats struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ScoreHistogram counts how many visited configurations had each score.
// The search keeps a histogram rather than every score so memory stays
// bounded by the number of distinct scores.
type ScoreHistogram map[int]int

// Add records one configuration with the given score.
func (h ScoreHistogram) Add(score int) {
	h[score]++
}

// Stats returns the weighted summary of the histogram.
func (h ScoreHistogram) Stats() ScoreStats {
	if len(h) == 0 {
		return ScoreStats{}
	}
	scores := slices.Sorted(maps.Keys(h))

	x := make([]float64, len(scores))
	w := make([]float64, len(scores))
	count := 0
	for i, s := range scores {
		x[i] = float64(s)
		w[i] = float64(h[s])
		count += h[s]
	}

	st := ScoreStats{
		Count: count,
		Min:   scores[0],
		Max:   scores[len(scores)-1],
	}
	if count == 1 {
		st.Mean = x[0]
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(x, w)
	return st
}
