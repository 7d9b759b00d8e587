package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/analysis"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/collector"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/normalize"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sentiment"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sink"
)

// Stage names.
const (
	StageChannelStats = "channel-stats"
	StageVideoIDs     = "video-ids"
	StageVideoDetails = "video-details"
	StagePreprocess   = "preprocess"
	StageComments     = "comments"
	StageSentiment    = "sentiment"
	StageAnalyze      = "analyze"
)

// Stage files inside the data directory.
const (
	FileChannelStats = "channel_stats.csv"
	FileVideoIDs     = "video_ids.csv"
	FileVideosRaw    = "video_details_raw.csv"
	FileVideos       = "video_details.csv"
	FileComments     = "comments.csv"
	FileSentiment    = "comments_with_sentiment.csv"
)

// Options are the collection parameters.
type Options struct {
	ChannelIDs []string
	// PlaylistID, when set, replaces the uploads playlists from channel-stats.
	PlaylistID string
	PageSize   int
	BatchSize  int
	CommentCap int
}

// Pipeline holds the collaborators the stages use.
type Pipeline struct {
	Collector *collector.Collector
	// Annotator is nil when no sentiment provider is configured; the
	// sentiment stage then fails with ErrNotConfigured.
	Annotator *sentiment.Annotator
	Renderer  *analysis.Renderer
	Files     *sink.CSV
	// Snapshots receives a timestamped copy of every stage output. Nil
	// disables snapshots.
	Snapshots sink.Sink
	Options   Options
}

// Stages returns the stage graph:
// channel-stats → video-ids → {video-details → preprocess → analyze,
// comments → sentiment}.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{Name: StageChannelStats, Run: p.channelStats},
		{Name: StageVideoIDs, After: []string{StageChannelStats}, Run: p.videoIDs},
		{Name: StageVideoDetails, After: []string{StageVideoIDs}, Run: p.videoDetails},
		{Name: StagePreprocess, After: []string{StageVideoDetails}, Run: p.preprocess},
		{Name: StageComments, After: []string{StageVideoIDs}, Run: p.comments},
		{Name: StageSentiment, After: []string{StageComments}, Run: p.sentiment},
		{Name: StageAnalyze, After: []string{StagePreprocess}, Run: p.analyze},
	}
}

// NewRunner builds a runner over the pipeline's stages.
func (p *Pipeline) NewRunner() (*Runner, error) {
	return NewRunner(p.Stages()...)
}

func (p *Pipeline) save(run *Run, file string, t record.Table) error {
	path, err := p.Files.WriteFile(file, t)
	if err != nil {
		return err
	}
	run.Logger.Info().Str("path", path).Int("count", t.Len()).Msg("Stage output written")

	if p.Snapshots != nil {
		if _, err := p.Snapshots.Save(t, strings.TrimSuffix(file, ".csv")); err != nil {
			return fmt.Errorf("snapshot %s: %w", file, err)
		}
	}
	return nil
}

func (p *Pipeline) load(file string) (record.Table, error) {
	t, err := p.Files.ReadFile(file)
	if err != nil {
		return record.Table{}, fmt.Errorf("load stage input: %w", err)
	}
	return t, nil
}

func (p *Pipeline) channelStats(ctx context.Context, run *Run) (*report.Summary, error) {
	ids := p.Options.ChannelIDs
	if len(ids) == 0 {
		if p.Options.PlaylistID == "" {
			return nil, fmt.Errorf("%w: no channel ids or playlist id", ErrNotConfigured)
		}
		run.Logger.Info().Str(logging.FieldPlaylistID, p.Options.PlaylistID).Msg("No channel ids, playlist configured directly")
		return nil, p.save(run, FileChannelStats, record.ChannelStatsTable(nil))
	}

	stats, err := p.Collector.ChannelStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	return nil, p.save(run, FileChannelStats, record.ChannelStatsTable(stats))
}

func (p *Pipeline) playlists() ([]string, error) {
	if p.Options.PlaylistID != "" {
		return []string{p.Options.PlaylistID}, nil
	}

	t, err := p.load(FileChannelStats)
	if err != nil {
		return nil, err
	}
	stats, err := record.ParseChannelStats(t)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, s := range stats {
		if s.PlaylistID != "" {
			out = append(out, s.PlaylistID)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no uploads playlist in %s", ErrNotConfigured, FileChannelStats)
	}
	return out, nil
}

func (p *Pipeline) videoIDs(ctx context.Context, run *Run) (*report.Summary, error) {
	playlists, err := p.playlists()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, pl := range playlists {
		got, err := p.Collector.FetchAllIDs(ctx, pl, p.Options.PageSize)
		if err != nil {
			return nil, fmt.Errorf("playlist %s: %w", pl, err)
		}
		ids = append(ids, got...)
	}
	return nil, p.save(run, FileVideoIDs, record.VideoIDsTable(ids))
}

func (p *Pipeline) videoIDsFromDisk() ([]string, error) {
	t, err := p.load(FileVideoIDs)
	if err != nil {
		return nil, err
	}
	return record.ParseVideoIDs(t)
}

func (p *Pipeline) videoDetails(ctx context.Context, run *Run) (*report.Summary, error) {
	ids, err := p.videoIDsFromDisk()
	if err != nil {
		return nil, err
	}

	videos, err := p.Collector.FetchDetails(ctx, ids, p.Options.BatchSize)
	if err != nil {
		return nil, err
	}
	return nil, p.save(run, FileVideosRaw, record.VideosTable(videos))
}

func (p *Pipeline) preprocess(_ context.Context, run *Run) (*report.Summary, error) {
	t, err := p.load(FileVideosRaw)
	if err != nil {
		return nil, err
	}
	videos, err := record.ParseVideos(t)
	if err != nil {
		return nil, err
	}
	return nil, p.save(run, FileVideos, record.NormalizedTable(normalize.Normalize(videos)))
}

func (p *Pipeline) comments(ctx context.Context, run *Run) (*report.Summary, error) {
	ids, err := p.videoIDsFromDisk()
	if err != nil {
		return nil, err
	}

	bundles, summary := p.Collector.FetchComments(ctx, ids, p.Options.CommentCap)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, p.save(run, FileComments, record.CommentsTable(bundles))
}

func (p *Pipeline) sentiment(ctx context.Context, run *Run) (*report.Summary, error) {
	if p.Annotator == nil {
		return nil, fmt.Errorf("%w: sentiment provider", ErrNotConfigured)
	}

	t, err := p.load(FileComments)
	if err != nil {
		return nil, err
	}
	bundles, err := record.ParseComments(t)
	if err != nil {
		return nil, err
	}

	rows, err := p.Annotator.Annotate(ctx, bundles)
	if err != nil {
		return nil, err
	}
	return nil, p.save(run, FileSentiment, record.SentimentTable(rows))
}

func (p *Pipeline) analyze(ctx context.Context, _ *Run) (*report.Summary, error) {
	if p.Renderer == nil {
		return nil, fmt.Errorf("%w: chart renderer", ErrNotConfigured)
	}

	t, err := p.load(FileVideos)
	if err != nil {
		return nil, err
	}
	videos, err := record.ParseNormalized(t)
	if err != nil {
		return nil, err
	}
	return p.Renderer.Render(ctx, videos)
}
