// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scheduler runs tasks with bounded parallelism while keeping submission order.
package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultLimit is the number of tasks in flight when no limit is configured.
const DefaultLimit = 10

// Scheduler is the admission gate of one run. Tasks are admitted first come, first served.
type Scheduler struct {
	sem   *semaphore.Weighted
	limit int
}

// New returns a scheduler admitting at most limit tasks at once. limit < 1 selects DefaultLimit.
func New(limit int) *Scheduler {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Scheduler{sem: semaphore.NewWeighted(int64(limit)), limit: limit}
}

// Limit returns the concurrency bound.
func (s *Scheduler) Limit() int { return s.limit }

// Run calls fn for indices 0..n-1 and returns the results in index order.
//
// The first error cancels the context passed to the remaining tasks; tasks not yet
// admitted are never started. Run returns that first error.
func Run[T any](ctx context.Context, s *Scheduler, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		if err := s.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer s.sem.Release(1)
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
