package job

import (
	"fmt"
	"io"
	"strings"

	"github.com/copyleftdev/torus/internal/torus"
)

// WriteText prints a human-readable summary of rep.
func WriteText(w io.Writer, rep *Report) error {
	var b strings.Builder
	res := rep.Result

	if p := rep.Job.Param; p != nil {
		fmt.Fprintf(&b, "marked points (column %d = %d): %d\n", p.Index, p.Value, len(rep.Points))
	} else {
		fmt.Fprintf(&b, "points: %d\n", len(rep.Points))
	}
	for _, p := range rep.Points {
		fmt.Fprintf(&b, "  %s\n", torus.Point(p))
	}
	fmt.Fprintf(&b, "dimensions: %v\n", rep.Sizes)
	fmt.Fprintf(&b, "initial score: %d\n", res.Initial.Score)
	if res.Improved {
		fmt.Fprintf(&b, "best score: %d (improved)\n", res.BestScore())
	} else {
		fmt.Fprintf(&b, "best score: %d (initial arrangement not beaten)\n", res.BestScore())
	}
	fmt.Fprintf(&b, "visited configurations: %d (proposed %d, duplicates %d)\n",
		res.Visited, res.Proposed, res.Duplicates)
	fmt.Fprintf(&b, "score mean: %.3f, std dev: %.3f, range: [%d, %d]\n",
		res.Stats.Mean, res.Stats.StdDev, res.Stats.Min, res.Stats.Max)
	b.WriteString("best arrangement:\n")
	for _, p := range res.BestConfiguration() {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	fmt.Fprintf(&b, "average neighbors per point: %.3f\n", rep.AverageNeighbors)

	_, err := io.WriteString(w, b.String())
	return err
}
