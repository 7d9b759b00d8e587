package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/pagination"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/youtube"
	"github.com/rs/zerolog"
	yt "google.golang.org/api/youtube/v3"
)

// DefaultCommentCap is the number of top-level comments kept per video.
const DefaultCommentCap = 10

// Source is the subset of the Data API the collector reads from.
// *youtube.API implements it.
type Source interface {
	Channels(ctx context.Context, ids []string) ([]*yt.Channel, error)
	PlaylistPage(ctx context.Context, playlistID, cursor string, size int) (pagination.Page[string], error)
	Videos(ctx context.Context, ids []string) ([]youtube.Video, error)
	CommentThreads(ctx context.Context, videoID string, max int) ([]string, error)
}

// Collector runs the harvesting operations against a Source.
type Collector struct {
	source Source
	logger zerolog.Logger
}

// New creates a Collector.
func New(source Source) *Collector {
	return &Collector{
		source: source,
		logger: logging.NewLogger("collector"),
	}
}

// WithLogger returns a copy of c that logs through logger.
func (c *Collector) WithLogger(logger zerolog.Logger) *Collector {
	cp := *c
	cp.logger = logger
	return &cp
}

// ChannelStats returns one row per channel the API knows, in API order.
func (c *Collector) ChannelStats(ctx context.Context, channelIDs []string) ([]record.ChannelStat, error) {
	if len(channelIDs) == 0 {
		return nil, errors.New("channel stats: no channel ids")
	}

	channels, err := c.source.Channels(ctx, channelIDs)
	if err != nil {
		return nil, fmt.Errorf("channel stats: %w", err)
	}

	stats := make([]record.ChannelStat, 0, len(channels))
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		stats = append(stats, channelStat(ch))
	}

	c.logger.Info().Int("requested", len(channelIDs)).Int("count", len(stats)).Msg("Channel stats collected")
	return stats, nil
}

func channelStat(ch *yt.Channel) record.ChannelStat {
	s := record.ChannelStat{ChannelID: ch.Id}
	if ch.Snippet != nil {
		s.ChannelName = ch.Snippet.Title
	}
	if ch.Statistics != nil {
		s.Subscribers = int64(ch.Statistics.SubscriberCount)
		s.Views = int64(ch.Statistics.ViewCount)
		s.TotalVideos = int64(ch.Statistics.VideoCount)
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		s.PlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return s
}

// FetchAllIDs returns every video id of a playlist in page order.
// Duplicates are kept. Page sizes outside 1..50 are clamped to 50.
func (c *Collector) FetchAllIDs(ctx context.Context, playlistID string, pageSize int) ([]string, error) {
	size := pagination.ClampPageSize(pageSize)

	cfg := pagination.DefaultConfig()
	cfg.Name = "playlistItems " + playlistID

	ids, err := pagination.FetchAll(ctx, func(ctx context.Context, cursor string) (pagination.Page[string], error) {
		return c.source.PlaylistPage(ctx, playlistID, cursor, size)
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("fetch ids for %s: %w", playlistID, err)
	}

	c.logger.Info().
		Str(logging.FieldPlaylistID, playlistID).
		Int("count", len(ids)).
		Msg("Playlist ids collected")
	return ids, nil
}

// FetchDetails fetches and flattens videos in chunks of batchSize (at most
// 50). Ids the API does not return are absent from the result.
func (c *Collector) FetchDetails(ctx context.Context, ids []string, batchSize int) ([]record.VideoRecord, error) {
	if batchSize <= 0 || batchSize > pagination.MaxBatchSize {
		batchSize = pagination.MaxBatchSize
	}

	videos, err := pagination.BatchFetch(ctx, ids, batchSize, func(ctx context.Context, chunk []string) ([]record.VideoRecord, error) {
		items, err := c.source.Videos(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out := make([]record.VideoRecord, len(items))
		for i, item := range items {
			out[i] = FlattenVideo(item)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}

	if missing := len(ids) - len(videos); missing > 0 {
		c.logger.Warn().Int("missing", missing).Msg("Some videos were not returned")
	}
	c.logger.Info().Int("requested", len(ids)).Int("count", len(videos)).Msg("Video details collected")
	return videos, nil
}

// FetchComments collects up to perVideoCap top-level comments for each id,
// one request per video. A failed video is logged and recorded as skipped
// in the summary; no bundle is emitted for it. Cancellation stops the loop
// and marks the remaining ids as skipped.
func (c *Collector) FetchComments(ctx context.Context, ids []string, perVideoCap int) ([]record.CommentBundle, *report.Summary) {
	if perVideoCap <= 0 {
		perVideoCap = DefaultCommentCap
	}

	summary := report.NewSummary("comments")
	var bundles []record.CommentBundle

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				summary.Skip(rest, err)
			}
			c.logger.Warn().Err(err).Int("remaining", len(ids)-i).Msg("Comment collection cancelled")
			break
		}

		comments, err := c.source.CommentThreads(ctx, id, perVideoCap)
		if err != nil {
			c.logger.Warn().Err(err).Str(logging.FieldVideoID, id).Msg("Could not get comments")
			summary.Skip(id, err)
			continue
		}

		if len(comments) > perVideoCap {
			comments = comments[:perVideoCap]
		}
		bundles = append(bundles, record.CommentBundle{VideoID: id, Comments: comments})
		summary.OK(id)
	}

	c.logger.Info().
		Int("ok", summary.Succeeded()).
		Int("skipped", summary.Skipped()).
		Msg("Comments collected")
	return bundles, summary
}
