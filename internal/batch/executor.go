package batch

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// Run executes op over items with bounded concurrency. Items are grouped into
// fixed-size chunks in input order; chunks run strictly sequentially, items
// within a chunk run concurrently, and a fixed delay is inserted between
// chunk completions to pace the aggregate request rate against the source
// site. A failed item is logged and excluded from the results; it never
// aborts the batch.
func Run[T, R any](ctx context.Context, items []T, op func(context.Context, T) (R, error), chunkSize int, delay time.Duration, logger arbor.ILogger) []R {
	if chunkSize < 1 {
		chunkSize = 1
	}

	results := make([]R, 0, len(items))
	totalChunks := (len(items) + chunkSize - 1) / chunkSize

	for start := 0; start < len(items); start += chunkSize {
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Msg("Batch run cancelled")
			return results
		}

		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		logger.Debug().
			Int("chunk", start/chunkSize+1).
			Int("total_chunks", totalChunks).
			Int("chunk_size", len(chunk)).
			Msg("Processing batch chunk")

		chunkResults := make([]*R, len(chunk))
		var wg sync.WaitGroup
		for i, item := range chunk {
			wg.Add(1)
			go func(i int, item T) {
				defer wg.Done()
				result, err := op(ctx, item)
				if err != nil {
					logger.Warn().
						Int("index", start+i).
						Err(err).
						Msg("Batch item failed, skipping")
					return
				}
				chunkResults[i] = &result
			}(i, item)
		}
		wg.Wait()

		// Successes keep input order within the chunk
		for _, r := range chunkResults {
			if r != nil {
				results = append(results, *r)
			}
		}

		// Delay between chunk completions, not after the last one
		if end < len(items) && delay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Err(ctx.Err()).Msg("Batch run cancelled during delay")
				return results
			case <-time.After(delay):
			}
		}
	}

	return results
}
