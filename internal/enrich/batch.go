package enrich

import (
	"context"
	"sync"
	"time"
)

// Runner drives a batch of enrichment items with rate limiting. Concurrent
// mode runs each group of Size items in parallel and pauses Delay between
// groups; sequential mode runs one item at a time pausing Delay between
// items. OnProgress fires after each group.
type Runner struct {
	Size       int
	Delay      time.Duration
	Concurrent bool
	OnProgress func(done, total int)

	pause func(ctx context.Context, d time.Duration) error
}

func (r *Runner) Run(ctx context.Context, total int, fn func(ctx context.Context, idx int)) error {
	if r.Size <= 0 {
		r.Size = 1
	}
	sleep := r.pause
	if sleep == nil {
		sleep = sleepContext
	}

	for start := 0; start < total; start += r.Size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+r.Size, total)

		if r.Concurrent {
			var wg sync.WaitGroup
			for idx := start; idx < end; idx++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					fn(ctx, idx)
				}(idx)
			}
			wg.Wait()
		} else {
			for idx := start; idx < end; idx++ {
				fn(ctx, idx)
				if idx < total-1 {
					if err := sleep(ctx, r.Delay); err != nil {
						return err
					}
				}
			}
		}

		if r.OnProgress != nil {
			r.OnProgress(end, total)
		}
		if r.Concurrent && end < total {
			if err := sleep(ctx, r.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
