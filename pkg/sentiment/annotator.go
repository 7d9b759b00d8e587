// Package sentiment labels comments with a pretrained classifier.
//
// The Annotator owns batching, pacing and the alignment check; a Classifier
// is a thin adapter over a hosted model.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/rs/zerolog"
)

// ErrMisaligned is returned when a classifier answers a batch with a
// different number of results than it was given.
var ErrMisaligned = errors.New("classifier output does not match input")

// Result is one label with its confidence.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier labels texts. It must return exactly one result per text, in
// input order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Result, error)
}

// Config controls how much is classified and how fast.
type Config struct {
	BatchSize   int
	MaxComments int
	// Pace is the pause between batches.
	Pace time.Duration
}

// DefaultConfig returns batches of 100, the first 500 comments and a 100ms
// pause between batches.
func DefaultConfig() Config {
	return Config{
		BatchSize:   100,
		MaxComments: 500,
		Pace:        100 * time.Millisecond,
	}
}

// Annotator applies a Classifier to comment bundles.
type Annotator struct {
	classifier Classifier
	config     Config
	logger     zerolog.Logger
}

// NewAnnotator creates an Annotator. Zero config values take defaults.
func NewAnnotator(classifier Classifier, cfg Config) *Annotator {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 || cfg.BatchSize > def.BatchSize {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxComments <= 0 {
		cfg.MaxComments = def.MaxComments
	}
	if cfg.Pace < 0 {
		cfg.Pace = 0
	}

	return &Annotator{
		classifier: classifier,
		config:     cfg,
		logger:     logging.NewLogger("sentiment"),
	}
}

// Prepare explodes bundles, drops blank comments and keeps the first
// MaxComments rows.
func (a *Annotator) Prepare(bundles []record.CommentBundle) []record.CommentRow {
	var rows []record.CommentRow
	for _, row := range record.Explode(bundles) {
		if strings.TrimSpace(row.Comment) == "" {
			continue
		}
		rows = append(rows, row)
		if len(rows) == a.config.MaxComments {
			break
		}
	}
	return rows
}

// Annotate labels the prepared comments batch by batch. The output has the
// same length and order as Prepare's result.
func (a *Annotator) Annotate(ctx context.Context, bundles []record.CommentBundle) ([]record.SentimentRow, error) {
	rows := a.Prepare(bundles)
	a.logger.Info().Int("count", len(rows)).Msg("Performing sentiment analysis")

	out := make([]record.SentimentRow, 0, len(rows))
	for start := 0; start < len(rows); start += a.config.BatchSize {
		if start > 0 && a.config.Pace > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.config.Pace):
			}
		}

		end := min(start+a.config.BatchSize, len(rows))
		batch := rows[start:end]
		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Comment
		}

		a.logger.Debug().Int("from", start+1).Int("to", end).Msg("Analyzing comments")

		results, err := a.classifier.Classify(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("classify comments %d-%d: %w", start+1, end, err)
		}
		if len(results) != len(texts) {
			return nil, fmt.Errorf("%w: comments %d-%d: got %d results for %d texts",
				ErrMisaligned, start+1, end, len(results), len(texts))
		}

		for i, r := range batch {
			out = append(out, record.SentimentRow{
				VideoID: r.VideoID,
				Comment: r.Comment,
				Label:   results[i].Label,
				Score:   results[i].Score,
			})
		}
	}

	return out, nil
}
