package youtube

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/internal/testutil"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) (*API, *testutil.MockYouTube) {
	t.Helper()

	mock := testutil.NewMockYouTube()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig(nil, "test-key")
	cfg.BaseURL = mock.URL()
	cfg.InitialBackoff = time.Millisecond
	c, err := client.New(cfg)
	require.NoError(t, err)

	return New(c), mock
}

func TestChannels(t *testing.T) {
	api, mock := newAPI(t)
	mock.AddChannel("UC1", "First", "UU1", 10, 200, 3)
	mock.AddChannel("UC2", "Second", "UU2", 20, 400, 6)

	channels, err := api.Channels(context.Background(), []string{"UC2", "UC1", "UCmissing"})
	require.NoError(t, err)
	require.Len(t, channels, 2)

	assert.Equal(t, "UC2", channels[0].Id)
	assert.Equal(t, "Second", channels[0].Snippet.Title)
	assert.Equal(t, uint64(20), channels[0].Statistics.SubscriberCount)
	assert.Equal(t, "UU2", channels[0].ContentDetails.RelatedPlaylists.Uploads)

	calls := mock.Calls("channels")
	require.Len(t, calls, 1)
	assert.Equal(t, "UC2,UC1,UCmissing", calls[0].Get("id"))
}

func TestPlaylistPage(t *testing.T) {
	api, mock := newAPI(t)
	ids := make([]string, 7)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}
	mock.SetPlaylist("UU1", ids)

	first, err := api.PlaylistPage(context.Background(), "UU1", "", 5)
	require.NoError(t, err)
	assert.Equal(t, ids[:5], first.Items)
	assert.Equal(t, "page-5", first.NextCursor)

	second, err := api.PlaylistPage(context.Background(), "UU1", first.NextCursor, 5)
	require.NoError(t, err)
	assert.Equal(t, ids[5:], second.Items)
	assert.Empty(t, second.NextCursor)

	calls := mock.Calls("playlistItems")
	assert.Empty(t, calls[0].Get("pageToken"), "first page must not send a cursor")
	assert.Equal(t, "page-5", calls[1].Get("pageToken"))
}

func TestPlaylistPage_ClampsSize(t *testing.T) {
	api, mock := newAPI(t)
	mock.SetPlaylist("UU1", []string{"a"})

	_, err := api.PlaylistPage(context.Background(), "UU1", "", 500)
	require.NoError(t, err)
	assert.Equal(t, "50", mock.Calls("playlistItems")[0].Get("maxResults"))
}

func TestPlaylistPage_NotFound(t *testing.T) {
	api, _ := newAPI(t)

	_, err := api.PlaylistPage(context.Background(), "UUnone", "", 50)
	require.Error(t, err)
	assert.True(t, client.HasReason(err, "playlistNotFound"))
}

func TestVideos_KeepsAbsence(t *testing.T) {
	api, mock := newAPI(t)
	mock.AddVideo("full", testutil.VideoItem("Full", "2024-01-01T00:00:00Z", "PT1M", 100, "go"))
	mock.AddVideo("bare", map[string]any{
		"snippet":    map[string]any{"title": "Bare"},
		"statistics": map[string]any{"viewCount": "0"},
	})

	videos, err := api.Videos(context.Background(), []string{"full", "bare", "gone"})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	full := videos[0]
	assert.Equal(t, "full", full.ID)
	assert.Equal(t, []string{"go"}, full.Snippet.Tags)
	assert.Equal(t, "100", *full.Statistics.ViewCount)
	assert.Equal(t, "0", *full.Statistics.FavoriteCount)

	bare := videos[1]
	assert.Nil(t, bare.Snippet.Tags)
	assert.Nil(t, bare.Statistics.LikeCount)
	require.NotNil(t, bare.Statistics.ViewCount, "zero must survive decoding")
	assert.Equal(t, "0", *bare.Statistics.ViewCount)
	assert.Nil(t, bare.ContentDetails)

	assert.Equal(t, "snippet,statistics,contentDetails", mock.Calls("videos")[0].Get("part"))
}

func TestVideos_TooManyIDs(t *testing.T) {
	api, mock := newAPI(t)
	ids := make([]string, 51)

	_, err := api.Videos(context.Background(), ids)
	assert.Error(t, err)
	assert.Zero(t, mock.GetRequestCount())
}

func TestCommentThreads(t *testing.T) {
	api, mock := newAPI(t)
	mock.SetComments("v1", []string{"first", "second", "third"})

	comments, err := api.CommentThreads(context.Background(), "v1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, comments)

	q := mock.Calls("commentThreads")[0]
	assert.Equal(t, "plainText", q.Get("textFormat"))
	assert.Equal(t, "2", q.Get("maxResults"))
}

func TestCommentThreads_Disabled(t *testing.T) {
	api, mock := newAPI(t)
	mock.FailComments("v1", http.StatusForbidden, "commentsDisabled")

	_, err := api.CommentThreads(context.Background(), "v1", 10)
	require.Error(t, err)
	assert.True(t, client.HasReason(err, "commentsDisabled"))
	assert.Equal(t, 1, mock.GetRequestCount(), "client errors are not retried")
}
