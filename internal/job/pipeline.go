package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/optimization"
	"github.com/copyleftdev/torus/internal/optimization/search"
	"github.com/copyleftdev/torus/internal/pointcloud"
	"github.com/copyleftdev/torus/internal/torus"
)

// Report is the outcome of a run.
type Report struct {
	Job    Job
	Points [][]int
	Sizes  []int
	Result *optimization.OptimizationResult
	// AverageNeighbors is the best score divided by the number of points.
	AverageNeighbors float64
}

// Runner executes jobs.
type Runner struct {
	logger   *zap.Logger
	recorder search.Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger. It is also handed to the optimizer.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics sink handed to the optimizer.
func WithRecorder(rec search.Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare turns a raw point matrix into a search problem. Grid sizes come
// from the bounding box of every row, marked or not; the parameter column
// is then dropped from the marked rows.
func Prepare(matrix [][]int, param *pointcloud.Column) (optimization.Problem, error) {
	paramIndex := -1
	if param != nil {
		paramIndex = param.Index
	}
	sizes, err := pointcloud.Dimensions(matrix, paramIndex)
	if err != nil {
		return optimization.Problem{}, errors.Wrap(err, "computing dimensions").WithComponent("job").WithOperation("prepare").WithKind(errors.Invalid)
	}

	marked := matrix
	if param != nil {
		if marked, err = pointcloud.Filter(matrix, *param); err != nil {
			return optimization.Problem{}, errors.Wrap(err, "selecting marked points").WithComponent("job").WithOperation("prepare").WithKind(errors.Invalid)
		}
	}

	problem := optimization.Problem{
		Initial: torus.FromPoints(marked),
		Sizes:   sizes,
	}
	if err := problem.Validate(); err != nil {
		return optimization.Problem{}, errors.Wrap(err, "").WithComponent("job").WithOperation("prepare").WithKind(errors.Invalid)
	}
	return problem, nil
}

// Search runs the optimizer on problem and builds a report.
func (r *Runner) Search(ctx context.Context, problem optimization.Problem, history bool) (*Report, error) {
	opt := search.New(
		search.WithLogger(r.logger),
		search.WithRecorder(r.recorder),
		search.WithHistory(history),
	)
	result, err := opt.Optimize(ctx, problem)
	if err != nil {
		return nil, errors.Wrap(err, "search failed").WithComponent("job").WithOperation("search")
	}

	return &Report{
		Points:           problem.Initial.Points(),
		Sizes:            problem.Sizes,
		Result:           result,
		AverageNeighbors: float64(result.BestScore()) / float64(len(problem.Initial)),
	}, nil
}

// Run executes j: read, prepare, search and, when j.Output is set, write the
// best arrangement. If nothing beat the starting arrangement the starting
// arrangement is written.
func (r *Runner) Run(ctx context.Context, j Job) (*Report, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger.With(zap.String("input", j.Input))

	matrix, err := pointcloud.ReadFile(j.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", j.Input).WithComponent("job").WithOperation("read").WithKind(errors.IO)
	}
	problem, err := Prepare(matrix, j.Param)
	if err != nil {
		return nil, err
	}
	logger.Info("points loaded",
		zap.Int("rows", len(matrix)),
		zap.Int("marked", len(problem.Initial)),
		zap.Ints("sizes", problem.Sizes),
	)

	rep, err := r.Search(ctx, problem, j.History)
	if err != nil {
		return nil, err
	}
	rep.Job = j

	if !rep.Result.Improved {
		logger.Warn("no arrangement improved on the start; keeping the initial one",
			zap.Int("score", rep.Result.Initial.Score))
	}

	if j.Output != "" {
		best := rep.Result.BestConfiguration().Points()
		if err := pointcloud.WriteFile(j.Output, best, j.Param); err != nil {
			return nil, errors.Wrapf(err, "writing %s", j.Output).WithComponent("job").WithOperation("write").WithKind(errors.IO)
		}
		logger.Info("best arrangement written", zap.String("output", j.Output))
	}
	return rep, nil
}
