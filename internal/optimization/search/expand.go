package search

import "github.com/copyleftdev/torus/internal/torus"

// expand calls propose with every configuration reachable from c by moving
// one row one step, in both directions, for every row of every axis. Each
// candidate is a fresh value that propose may keep.
func expand(c torus.Configuration, sizes []int, propose func(torus.Configuration) bool) {
	for axis := range sizes {
		rest := torus.SizesWithout(sizes, axis)
		row := make(torus.Point, len(rest))
		for i, n := 0, torus.RowCount(sizes, axis); i < n; i++ {
			propose(torus.ShiftRow(c, row, axis, sizes, 1))
			propose(torus.ShiftRow(c, row, axis, sizes, -1))
			row = torus.NextRow(row, rest)
		}
	}
}

// Neighbors returns every single-row, single-step shift of c in generation
// order, without deduplication. The result has CandidateCount(sizes) entries.
func Neighbors(c torus.Configuration, sizes []int) []torus.Configuration {
	out := make([]torus.Configuration, 0, CandidateCount(sizes))
	expand(c, sizes, func(n torus.Configuration) bool {
		out = append(out, n)
		return true
	})
	return out
}

// CandidateCount returns how many candidates one expansion proposes on a
// grid of the given sizes.
func CandidateCount(sizes []int) int {
	n := 0
	for axis := range sizes {
		n += torus.RowCount(sizes, axis)
	}
	return 2 * n
}
