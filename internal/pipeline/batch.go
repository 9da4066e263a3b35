package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// chunkTask is one unit of AEAD work: seal or open a single chunk.
type chunkTask func(index int) ([]byte, error)

// runBatch submits n independent tasks to a worker pool bounded to
// limit concurrent goroutines, then collects results into a pre-sized
// slice indexed by submission order, so output byte i always precedes
// output byte i+1 regardless of which worker finished first.
//
// On any task failure the batch is considered aborted: the
// lowest-index error is returned and no further output should be
// written by the caller. Workers for other indices may have already
// produced results; those are discarded, and the caller receives only
// the error.
func runBatch(ctx context.Context, limit, n int, task chunkTask) ([][]byte, error) {
	if n == 0 {
		return nil, nil
	}

	results := make([][]byte, n)
	errs := make([]error, n)

	g, _ := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			out, err := task(i)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = out
			return nil
		})
	}

	// g.Wait's own return value is intentionally ignored: task never
	// returns a non-nil error to the group, so that a crash in one
	// worker can't race errgroup's built-in "return first error seen"
	// against the deterministic lowest-index scan below.
	_ = g.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			return nil, errs[i]
		}
	}

	return results, nil
}
