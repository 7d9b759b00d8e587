// Package youtube maps the Data API v3 list endpoints used by the pipeline
// onto typed Go values.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/pagination"
	"github.com/rs/zerolog"
	yt "google.golang.org/api/youtube/v3"
)

// Getter fetches a Data API resource and decodes the JSON body into out.
// *client.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, resource string, params url.Values, out any) error
}

// API wraps a Getter with the list calls the pipeline needs.
type API struct {
	client Getter
	logger zerolog.Logger
}

// New creates an API over c.
func New(c Getter) *API {
	return &API{
		client: c,
		logger: logging.NewLogger("youtube"),
	}
}

// Channels returns the channels for ids, in API order. Unknown ids are absent.
func (a *API) Channels(ctx context.Context, ids []string) ([]*yt.Channel, error) {
	return pagination.BatchFetch(ctx, ids, pagination.MaxBatchSize, func(ctx context.Context, chunk []string) ([]*yt.Channel, error) {
		params := url.Values{
			"part": {"snippet,contentDetails,statistics"},
			"id":   {strings.Join(chunk, ",")},
		}

		var resp yt.ChannelListResponse
		if err := a.client.GetJSON(ctx, "channels", params, &resp); err != nil {
			return nil, fmt.Errorf("channels.list: %w", err)
		}
		return resp.Items, nil
	})
}

// PlaylistPage fetches one page of a playlist's video ids. An empty cursor
// requests the first page.
func (a *API) PlaylistPage(ctx context.Context, playlistID, cursor string, size int) (pagination.Page[string], error) {
	params := url.Values{
		"part":       {"contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(pagination.ClampPageSize(size))},
	}
	if cursor != "" {
		params.Set("pageToken", cursor)
	}

	var resp yt.PlaylistItemListResponse
	if err := a.client.GetJSON(ctx, "playlistItems", params, &resp); err != nil {
		return pagination.Page[string]{}, fmt.Errorf("playlistItems.list: %w", err)
	}

	page := pagination.Page[string]{NextCursor: resp.NextPageToken}
	for _, item := range resp.Items {
		if item == nil || item.ContentDetails == nil {
			a.logger.Warn().Str("playlist_id", playlistID).Msg("Playlist item without contentDetails")
			continue
		}
		page.Items = append(page.Items, item.ContentDetails.VideoId)
	}
	return page, nil
}

// Videos fetches up to 50 videos in one call.
func (a *API) Videos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) > pagination.MaxBatchSize {
		return nil, fmt.Errorf("videos.list: %d ids exceeds limit of %d", len(ids), pagination.MaxBatchSize)
	}

	params := url.Values{
		"part": {"snippet,statistics,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}

	var resp VideoListResponse
	if err := a.client.GetJSON(ctx, "videos", params, &resp); err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}
	return resp.Items, nil
}

// CommentThreads returns the plain-text original of up to max top-level
// comments of a video.
func (a *API) CommentThreads(ctx context.Context, videoID string, max int) ([]string, error) {
	params := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"maxResults": {strconv.Itoa(max)},
		"textFormat": {"plainText"},
	}

	var resp yt.CommentThreadListResponse
	if err := a.client.GetJSON(ctx, "commentThreads", params, &resp); err != nil {
		return nil, fmt.Errorf("commentThreads.list %s: %w", videoID, err)
	}

	comments := make([]string, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil ||
			thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		comments = append(comments, thread.Snippet.TopLevelComment.Snippet.TextOriginal)
	}
	return comments, nil
}
