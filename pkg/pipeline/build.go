package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/yt-channel-pipeline/internal/config"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/analysis"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/client"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/collector"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sentiment"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sink"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/youtube"
)

// PlotsDir is the chart directory inside the data directory.
const PlotsDir = "plots"

// Built is a pipeline wired from configuration together with the resources
// it owns.
type Built struct {
	*Pipeline
	Client  *client.Client
	closers []func() error
}

// Close releases Redis and the SQLite mirror.
func (b *Built) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// FromConfig wires the production collaborators. Redis is optional; without
// it responses are not cached and quota accounting stays in process. A
// missing sentiment token leaves the sentiment stage unconfigured instead of
// failing the whole build.
func FromConfig(ctx context.Context, cfg *config.Config) (*Built, error) {
	b := &Built{}
	logger := logging.NewLogger("pipeline")

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
		b.closers = append(b.closers, rdb.Close)
	}

	clientCfg := client.DefaultConfig(rdb, cfg.APIKey)
	if cfg.APIBaseURL != "" {
		clientCfg.BaseURL = cfg.APIBaseURL
	}
	if cfg.DailyQuota > 0 {
		clientCfg.DailyQuota = cfg.DailyQuota
	}
	yt, err := client.New(clientCfg)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	b.Client = yt
	b.closers = append(b.closers, yt.Close)

	var snapshots sink.Multi
	if cfg.Snapshots {
		snapshots = append(snapshots, sink.NewCSV(cfg.DataDir))
	}
	if cfg.SQLitePath != "" {
		mirror, err := sink.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, mirror.Close)
		snapshots = append(snapshots, mirror)
	}

	classifier, err := NewClassifier(cfg.Sentiment)
	var annotator *sentiment.Annotator
	switch {
	case err == nil:
		annotator = sentiment.NewAnnotator(classifier, sentiment.Config{
			BatchSize:   cfg.Sentiment.BatchSize,
			MaxComments: cfg.Sentiment.MaxComments,
			Pace:        cfg.Sentiment.Pace,
		})
	case errors.Is(err, sentiment.ErrMissingToken):
		logger.Warn().Str("provider", cfg.Sentiment.Provider).Msg("No sentiment token configured, sentiment stage disabled")
	default:
		b.Close()
		return nil, err
	}

	b.Pipeline = &Pipeline{
		Collector: collector.New(youtube.New(yt)),
		Annotator: annotator,
		Renderer:  analysis.NewRenderer(filepath.Join(cfg.DataDir, PlotsDir)),
		Files:     sink.NewCSV(cfg.DataDir),
		Options: Options{
			ChannelIDs: cfg.ChannelIDs,
			PlaylistID: cfg.PlaylistID,
			PageSize:   cfg.PageSize,
			BatchSize:  cfg.BatchSize,
			CommentCap: cfg.CommentCap,
		},
	}
	if len(snapshots) > 0 {
		b.Snapshots = snapshots
	}
	return b, nil
}

// NewClassifier constructs the configured sentiment provider.
func NewClassifier(cfg config.SentimentConfig) (sentiment.Classifier, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := sentiment.NewOpenAI(sentiment.OpenAIConfig{
			Token:   cfg.Token,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderHuggingFace, "":
		c, err := sentiment.NewHuggingFace(sentiment.HuggingFaceConfig{
			Token:   cfg.Token,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Provider)
	}
}
