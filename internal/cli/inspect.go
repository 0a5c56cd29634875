package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/torus/internal/job"
	"github.com/copyleftdev/torus/internal/pointcloud"
	"github.com/copyleftdev/torus/internal/torus"
)

// NewScoreCommand creates the score command, which counts neighbor pairs of
// the marked points in a file without searching.
func NewScoreCommand(root *RootOptions) *cobra.Command {
	var (
		params paramFlags
		input  string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Count neighbor pairs among the marked points of a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := pointcloud.ReadFile(input)
			if err != nil {
				return err
			}
			problem, err := job.Prepare(matrix, params.column(cmd, root.cfg))
			if err != nil {
				return err
			}
			score := torus.CountNeighborPairs(problem.Initial)
			if root.Format == "json" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "{\"points\":%d,\"score\":%d}\n", len(problem.Initial), score)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "points: %d\nscore: %d\n", len(problem.Initial), score)
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "point file to read")
	_ = cmd.MarkFlagRequired("input")
	params.register(cmd)

	return cmd
}

// NewDimsCommand creates the dims command, which prints the grid size
// derived from a file's bounding box.
func NewDimsCommand(root *RootOptions) *cobra.Command {
	var (
		params paramFlags
		input  string
	)

	cmd := &cobra.Command{
		Use:   "dims",
		Short: "Print the grid dimensions of a point file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := pointcloud.ReadFile(input)
			if err != nil {
				return err
			}
			index := -1
			if col := params.column(cmd, root.cfg); col != nil {
				index = col.Index
			}
			dims, err := pointcloud.Dimensions(matrix, index)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dims)
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "point file to read")
	_ = cmd.MarkFlagRequired("input")
	params.register(cmd)

	return cmd
}
