package sweep

import (
	"context"
	"fmt"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Computer produces the budget of one configuration.
type Computer interface {
	Compute(cfg budget.ExperimentConfig) (budget.BudgetResult, error)
}

// Compile-time assertion that the converter can drive a sweep.
var _ Computer = (*budget.Converter)(nil)

// Row is the result of one Job.
type Row struct {
	Job
	Result budget.BudgetResult
}

// Runner computes jobs concurrently.
type Runner struct {
	computer Computer
	workers  int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the number of jobs computed at once. Non-positive values are ignored.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func NewRunner(computer Computer, opts ...RunnerOption) *Runner {
	r := Runner{
		computer: computer,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// Run computes every job and returns the rows in job order. The first failing job cancels
// the rest and its error is returned without partial rows.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Row, error) {
	runID := uuid.New().String()
	logger := zap.S().Named("sweep").With("run_id", runID)
	logger.Infow("starting sweep", "jobs", len(jobs), "workers", r.workers)

	rows := make([]Row, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.computer.Compute(job.Config)
			if err != nil {
				return fmt.Errorf("%s: %w", job, err)
			}
			rows[i] = Row{Job: job, Result: res}
			logger.Debugw("job done", "job", job.String(), "total_exemplars", res.TotalExemplars)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorw("sweep failed", "error", err)
		return nil, err
	}
	logger.Infow("sweep finished", "rows", len(rows))
	return rows, nil
}
