package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/job"
	"github.com/copyleftdev/torus/internal/optimization"
)

type runOptions struct {
	*RootOptions
	params  paramFlags
	input   string
	output  string
	jobFile string
	history bool
}

// NewRunCommand creates the run command.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &runOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search for the best arrangement of the marked points in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.job(cmd)
			if err != nil {
				return err
			}
			rep, err := job.NewRunner(job.WithLogger(opts.logger)).Run(cmd.Context(), *j)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd, rep)
			}
			return job.WriteText(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "point file to read")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file to write the best arrangement to")
	cmd.Flags().StringVar(&opts.jobFile, "job", "", "YAML job file; flags override its fields")
	cmd.Flags().BoolVar(&opts.history, "history", false, "record every visited configuration")
	opts.params.register(cmd)

	return cmd
}

func (o *runOptions) job(cmd *cobra.Command) (*job.Job, error) {
	j := &job.Job{}
	if o.jobFile != "" {
		loaded, err := job.LoadFile(o.jobFile)
		if err != nil {
			return nil, err
		}
		j = loaded
	} else {
		j.Param = o.params.column(cmd, o.cfg)
		j.History = o.cfg.Search.History
	}

	if cmd.Flags().Changed("input") {
		j.Input = o.input
	}
	if cmd.Flags().Changed("output") {
		j.Output = o.output
	}
	if cmd.Flags().Changed("history") {
		j.History = o.history
	}
	if o.jobFile != "" && (o.params.noParam || cmd.Flags().Changed("param-index") || cmd.Flags().Changed("param-value")) {
		j.Param = o.params.column(cmd, o.cfg)
	}
	if j.Input == "" {
		return nil, errors.New("an input file is required (--input or --job)").WithKind(errors.Invalid)
	}
	return j, nil
}

type runSummary struct {
	Input            string                  `json:"input"`
	Output           string                  `json:"output,omitempty"`
	Sizes            []int                   `json:"sizes"`
	Points           [][]int                 `json:"points"`
	InitialScore     int                     `json:"initial_score"`
	BestScore        int                     `json:"best_score"`
	Improved         bool                    `json:"improved"`
	Best             [][]int                 `json:"best"`
	Fingerprint      string                  `json:"fingerprint"`
	Visited          int                     `json:"visited"`
	Proposed         int                     `json:"proposed"`
	Duplicates       int                     `json:"duplicates"`
	Stats            optimization.ScoreStats `json:"stats"`
	AverageNeighbors float64                 `json:"average_neighbors"`
}

func writeJSON(cmd *cobra.Command, rep *job.Report) error {
	res := rep.Result
	fp := res.Initial.Fingerprint
	if res.Best != nil {
		fp = res.Best.Fingerprint
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runSummary{
		Input:            rep.Job.Input,
		Output:           rep.Job.Output,
		Sizes:            rep.Sizes,
		Points:           rep.Points,
		InitialScore:     res.Initial.Score,
		BestScore:        res.BestScore(),
		Improved:         res.Improved,
		Best:             res.BestConfiguration().Points(),
		Fingerprint:      fmt.Sprintf("%016x", fp),
		Visited:          res.Visited,
		Proposed:         res.Proposed,
		Duplicates:       res.Duplicates,
		Stats:            res.Stats,
		AverageNeighbors: rep.AverageNeighbors,
	})
}
