package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxPageSize is the largest maxResults value the list endpoints accept.
const MaxPageSize = 50

// ErrCursorStalled is returned when the server answers a page request with the
// same cursor it was given, which would otherwise loop forever.
var ErrCursorStalled = errors.New("pagination cursor did not advance")

// Config holds cursor fetcher configuration.
type Config struct {
	// Name identifies the walk in log lines (e.g. "playlistItems").
	Name string
	// Timeout per page request; zero disables the per-page deadline.
	Timeout time.Duration
	// ProgressEvery logs progress every N pages.
	ProgressEvery int
}

// DefaultConfig returns the configuration used for playlist walks.
func DefaultConfig() Config {
	return Config{
		Name:          "list",
		Timeout:       30 * time.Second,
		ProgressEvery: 10,
	}
}

// Page is one response of a cursor-paginated endpoint.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// PageFunc fetches the page that starts at cursor. The first call gets "".
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// ClampPageSize maps out-of-range page sizes to MaxPageSize.
func ClampPageSize(size int) int {
	if size <= 0 || size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// FetchAll follows the cursor until the server stops returning one and
// returns every item in page order. Any page error aborts the walk and no
// partial result is returned.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], cfg Config) ([]T, error) {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultConfig().ProgressEvery
	}

	start := time.Now()
	var (
		items  []T
		cursor string
		pages  int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", cfg.Name, pages+1, err)
		}

		page, err := fetchPage(ctx, fetch, cursor, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", cfg.Name, pages+1, err)
		}
		pages++
		items = append(items, page.Items...)

		if page.NextCursor == "" {
			break
		}
		if page.NextCursor == cursor {
			return nil, fmt.Errorf("%s: page %d: %w", cfg.Name, pages, ErrCursorStalled)
		}
		cursor = page.NextCursor

		if pages%cfg.ProgressEvery == 0 {
			log.Info().
				Str("walk", cfg.Name).
				Int("pages", pages).
				Int("items", len(items)).
				Msg("Pagination progress")
		}
	}

	log.Info().
		Str("walk", cfg.Name).
		Int("pages", pages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Pagination complete")

	return items, nil
}

func fetchPage[T any](ctx context.Context, fetch PageFunc[T], cursor string, timeout time.Duration) (Page[T], error) {
	if timeout <= 0 {
		return fetch(ctx, cursor)
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fetch(pageCtx, cursor)
}
