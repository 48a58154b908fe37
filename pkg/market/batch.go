package market

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// FetchAll fetches every requested item across a bounded worker pool. All
// workers share the client's rate limit bucket and connection pool; no
// other state crosses item boundaries, so outcomes are independent and
// correlate to requests by item id. The returned slice is in request order.
func (c *Client) FetchAll(ctx context.Context, reqs []Request) []Outcome {
	if len(reqs) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	logger := c.logger.With().Str("batch_id", batchID).Logger()

	workers := c.config.MaxConcurrency
	if workers > len(reqs) {
		workers = len(reqs)
	}

	start := time.Now()
	logger.Info().
		Int("items", len(reqs)).
		Int("workers", workers).
		Msg("Starting market fetch batch")

	type job struct {
		idx int
		req Request
	}

	outcomes := make([]Outcome, len(reqs))
	jobs := make(chan job)
	var done atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				// Workers keep draining after cancellation so every
				// item still gets its outcome row.
				outcomes[j.idx] = c.FetchOne(ctx, j.req.ItemID, j.req.Quantity)
				if n := done.Add(1); n%10 == 0 {
					logger.Info().
						Int64("fetched", n).
						Int("total", len(reqs)).
						Msg("Fetch progress")
				}
			}
		}()
	}

	for i, r := range reqs {
		jobs <- job{idx: i, req: r}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}

	logger.Info().
		Int("items", len(reqs)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Market fetch batch complete")

	return outcomes
}
