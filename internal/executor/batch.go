package executor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"askshell/internal/logging"
	"askshell/internal/planner"
)

// Batch runs execution plans, fanning independent tasks out across workers
// while honoring dependency ordering between groups.
type Batch struct {
	runner      *Runner
	logger      *slog.Logger
	maxParallel int
}

// NewBatch constructs a batch executor. maxParallel values below one fall
// back to a single worker.
func NewBatch(runner *Runner, logger *slog.Logger, maxParallel int) *Batch {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Batch{
		runner:      runner,
		logger:      logging.WithComponent(logger, "executor"),
		maxParallel: maxParallel,
	}
}

// TaskResult pairs a task with its execution outcome.
type TaskResult struct {
	Task   planner.Task
	Result Result
}

// BatchResult aggregates the outcomes of every task in a plan.
type BatchResult struct {
	Results  []TaskResult
	Duration time.Duration
}

// AllSucceeded reports whether every task exited zero.
func (b BatchResult) AllSucceeded() bool {
	for _, r := range b.Results {
		if !r.Result.Succeeded() {
			return false
		}
	}
	return true
}

// SuccessCount returns the number of tasks that exited zero.
func (b BatchResult) SuccessCount() int {
	count := 0
	for _, r := range b.Results {
		if r.Result.Succeeded() {
			count++
		}
	}
	return count
}

// FailureCount returns the number of tasks that did not succeed.
func (b BatchResult) FailureCount() int {
	return len(b.Results) - b.SuccessCount()
}

// FailedTasks returns the results of tasks that did not succeed.
func (b BatchResult) FailedTasks() []TaskResult {
	var failed []TaskResult
	for _, r := range b.Results {
		if !r.Result.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate returns the percentage of tasks that succeeded. An empty batch
// reports zero.
func (b BatchResult) SuccessRate() float64 {
	if len(b.Results) == 0 {
		return 0.0
	}
	return float64(b.SuccessCount()) / float64(len(b.Results)) * 100.0
}

// Execute runs the plan group by group. Tasks within a group run concurrently
// with at most maxParallel in flight; a later group starts only after its
// predecessor finished completely. A plan with parallelization disabled, or a
// cap of one, runs strictly one task at a time in list order. Failures do not
// stop the batch, but a cycle in the plan aborts scheduling of the unplaced
// tasks. Results always come back in task order.
func (b *Batch) Execute(ctx context.Context, plan *planner.Plan) (BatchResult, error) {
	start := time.Now()
	groups, planErr := plan.ParallelGroups()
	sequential := !plan.CanParallelize || b.maxParallel <= 1

	b.logger.Info(
		"batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("tasks", plan.TaskCount()),
		logging.Int("groups", len(groups)),
		logging.Int("max_parallel", b.maxParallel),
		logging.Bool("sequential", sequential),
	)

	var results []TaskResult
	for _, group := range groups {
		if ctx.Err() != nil {
			break
		}
		if sequential {
			for _, task := range group {
				results = append(results, b.runTask(ctx, task))
			}
			continue
		}

		groupResults := make([]TaskResult, len(group))
		eg, groupCtx := errgroup.WithContext(ctx)
		eg.SetLimit(b.maxParallel)
		for i, task := range group {
			i, task := i, task
			eg.Go(func() error {
				groupResults[i] = b.runTask(groupCtx, task)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return BatchResult{Results: results, Duration: time.Since(start)}, err
		}
		results = append(results, groupResults...)
	}

	batch := BatchResult{Results: results, Duration: time.Since(start)}
	b.logger.Info(
		"batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("tasks", len(batch.Results)),
		logging.Float64("success_rate", batch.SuccessRate()),
		logging.Duration("duration", batch.Duration),
	)
	return batch, planErr
}

func (b *Batch) runTask(ctx context.Context, task planner.Task) TaskResult {
	command := WithDirectory(task.WorkingDir, task.Command)
	return TaskResult{Task: task, Result: b.runner.Run(ctx, command)}
}
