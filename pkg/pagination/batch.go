package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// MaxBatchSize is the id limit of a single batch-get request.
const MaxBatchSize = 50

// Chunk splits items into contiguous slices of at most size elements.
// The returned slices share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = MaxBatchSize
	}
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// BatchFunc issues one batch-get request for a chunk of keys.
type BatchFunc[K, R any] func(ctx context.Context, chunk []K) ([]R, error)

// BatchFetch calls fetch once per chunk, strictly in chunk order, and
// concatenates the results. Within a chunk the order is whatever fetch
// returns. The first error aborts.
func BatchFetch[K, R any](ctx context.Context, keys []K, size int, fetch BatchFunc[K, R]) ([]R, error) {
	chunks := Chunk(keys, size)
	var out []R

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", i+1, len(chunks), err)
		}

		results, err := fetch(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, results...)

		log.Debug().
			Int("batch", i+1).
			Int("batches", len(chunks)).
			Int("requested", len(chunk)).
			Int("returned", len(results)).
			Msg("Batch fetched")
	}

	return out, nil
}
