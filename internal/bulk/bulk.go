package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glefebvre/mediadesk/internal/logger"
)

// Failure is an item whose mutation failed
type Failure struct {
	ID  int
	Err error
}

// Skip is an item that was not sent
type Skip struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// Result aggregates the independent outcomes of a batch, in input order
type Result struct {
	Succeeded []int
	Failed    []Failure
	Skipped   []Skip
}

// Total returns the number of items the batch covered
func (r Result) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Skipped)
}

// OK reports whether no item failed
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Err joins the failures into one error, or nil
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("item %d: %w", f.ID, f.Err))
	}
	return errors.Join(errs...)
}

// Merge appends other to r
func (r Result) Merge(other Result) Result {
	r.Succeeded = append(r.Succeeded, other.Succeeded...)
	r.Failed = append(r.Failed, other.Failed...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	return r
}

// SkipError marks an item as deliberately not mutated
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skipped returns an error that records the item as skipped
func Skipped(reason string) error {
	return &SkipError{Reason: reason}
}

// Runner executes one independent operation per item
type Runner struct {
	concurrency int
	logger      *logger.Logger
	onProgress  func(completed, total int)
}

// NewRunner creates a runner. concurrency <= 0 means unlimited.
func NewRunner(concurrency int, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Runner{concurrency: concurrency, logger: log}
}

// WithProgress returns a copy of the runner reporting progress after each item
func (r *Runner) WithProgress(fn func(completed, total int)) *Runner {
	cp := *r
	cp.onProgress = fn
	return &cp
}

// Concurrency returns the configured limit, 0 for unlimited
func (r *Runner) Concurrency() int {
	if r.concurrency < 0 {
		return 0
	}
	return r.concurrency
}

type outcome struct {
	id  int
	err error
}

// Run calls fn for every id. A failing item never stops the others; items
// not yet started when ctx is done are reported as failed with ctx.Err().
func (r *Runner) Run(ctx context.Context, ids []int, fn func(ctx context.Context, id int) error) Result {
	return Each(ctx, r, ids, func(id int) int { return id }, fn)
}

// Each is Run over arbitrary items identified by id
func Each[T any](ctx context.Context, r *Runner, items []T, id func(T) int, fn func(ctx context.Context, item T) error) Result {
	outcomes := make([]outcome, len(items))
	total := len(items)
	completed := 0
	var mu sync.Mutex

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i, item := range items {
		g.Go(func() error {
			var err error
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = fn(ctx, item)
			}
			outcomes[i] = outcome{id: id(item), err: err}

			if r.onProgress != nil {
				mu.Lock()
				completed++
				r.onProgress(completed, total)
				mu.Unlock()
			}
			// independent outcomes; never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for _, o := range outcomes {
		var skip *SkipError
		switch {
		case o.err == nil:
			res.Succeeded = append(res.Succeeded, o.id)
		case errors.As(o.err, &skip):
			res.Skipped = append(res.Skipped, Skip{ID: o.id, Reason: skip.Reason})
		default:
			res.Failed = append(res.Failed, Failure{ID: o.id, Err: o.err})
		}
	}

	fields := map[string]interface{}{
		"total":     total,
		"succeeded": len(res.Succeeded),
		"failed":    len(res.Failed),
		"skipped":   len(res.Skipped),
	}
	if res.OK() {
		r.logger.WithFields(fields).DebugContext(ctx, "batch completed")
	} else {
		r.logger.WithFields(fields).ErrorContext(ctx, "batch completed with failures", res.Err())
	}

	return res
}
