package oli

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// BatchOptions configures a ProcessRequestList run. Zero values fall back
// to the client defaults.
type BatchOptions struct {
	// BatchSize is the number of requests dispatched concurrently at a
	// time. Unset, or larger than the request count, means one batch.
	BatchSize int

	// BurstTag is appended to compute-style URLs for burst-lane routing.
	// A request's own BurstTag takes precedence.
	BurstTag string

	PollInterval time.Duration
	MaxPolls     int

	// OnProgress, if set, is invoked after each request completes with the
	// number of finished requests and the total. It may be called from
	// multiple goroutines and must be safe for concurrent use.
	OnProgress func(done, total int)
}

// ProcessRequestList runs an ordered list of flash requests. Requests are
// partitioned into contiguous batches; within a batch every request runs
// concurrently, and the whole batch is awaited before the next one starts.
//
// The returned slice has exactly one result per request, in input order,
// regardless of completion order. Any request failure aborts the run after
// its batch drains; there is no per-request catch-and-continue.
func (c *Client) ProcessRequestList(ctx context.Context, reqs []FlashRequest, opts BatchOptions) ([]FlashResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	interval := opts.PollInterval
	if interval == 0 {
		interval = c.pollInterval
	}
	maxPolls := opts.MaxPolls
	if maxPolls == 0 {
		maxPolls = c.maxPolls
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > len(reqs) {
		batchSize = len(reqs)
	}
	numBatches := (len(reqs) + batchSize - 1) / batchSize

	c.logger.Info("submitting requests",
		"requests", len(reqs), "batches", numBatches, "batch_size", batchSize)
	start := time.Now()

	results := make([]FlashResult, len(reqs))
	var done atomic.Int64

	for lo := 0; lo < len(reqs); lo += batchSize {
		hi := min(lo+batchSize, len(reqs))

		var wg sync.WaitGroup
		errs := make([]error, hi-lo)
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				req := reqs[idx]
				c.logger.Info("submitting sample", "index", idx+1)
				status, data, err := c.submitAndPoll(ctx, req, opts.BurstTag, interval, maxPolls)
				if err != nil {
					errs[idx-lo] = fmt.Errorf("request %d (%s): %w", idx, req.FlashMethod, err)
					return
				}
				// Each goroutine owns exactly one slot.
				results[idx] = FlashResult{
					Index:     idx,
					Status:    status,
					Data:      data,
					Submitted: req,
				}
				c.logger.Info("processed sample", "index", idx+1, "status", status)
				if opts.OnProgress != nil {
					opts.OnProgress(int(done.Add(1)), len(reqs))
				}
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	elapsed := time.Since(start)
	c.logger.Info("finished all requests",
		"requests", len(reqs),
		"total_seconds", elapsed.Seconds(),
		"seconds_per_sample", elapsed.Seconds()/float64(len(reqs)))
	return results, nil
}
