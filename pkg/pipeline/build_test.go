package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/yt-channel-pipeline/internal/config"
	"github.com/Sternrassler/yt-channel-pipeline/internal/testutil"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sentiment"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/sink"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		APIKey:     "test-key",
		DataDir:    t.TempDir(),
		DailyQuota: 10000,
		PageSize:   50,
		BatchSize:  50,
		CommentCap: 10,
		Sentiment:  config.SentimentConfig{Provider: config.ProviderHuggingFace},
	}
}

func TestFromConfig_Minimal(t *testing.T) {
	cfg := baseConfig(t)

	b, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Annotator, "no token leaves sentiment disabled")
	assert.Nil(t, b.Snapshots)
	assert.Nil(t, b.Client.GetCache(), "no redis means no cache")
	assert.Equal(t, filepath.Join(cfg.DataDir, PlotsDir), b.Renderer.Dir)
}

func TestFromConfig_SnapshotsAndMirror(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Snapshots = true
	cfg.SQLitePath = filepath.Join(cfg.DataDir, "pipeline.db")
	cfg.Sentiment = config.SentimentConfig{Provider: config.ProviderOpenAI, Token: "sk-test"}

	b, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Annotator)
	multi, ok := b.Snapshots.(sink.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)
}

func TestFromConfig_BadRedisURL(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RedisURL = "://not-a-url"

	_, err := FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestFromConfig_RunsAgainstAPIBaseURL(t *testing.T) {
	mock := testutil.NewMockYouTube()
	defer mock.Close()
	mock.AddChannel("UC1", "Mock", "UU1", 1, 2, 3)

	cfg := baseConfig(t)
	cfg.APIBaseURL = mock.URL()
	cfg.ChannelIDs = []string{"UC1"}

	b, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	r, err := b.NewRunner()
	require.NoError(t, err)
	_, err = r.Run(context.Background(), StageChannelStats)
	require.NoError(t, err)
	assert.Len(t, mock.Calls("channels"), 1)
}

func TestNewClassifier(t *testing.T) {
	_, err := NewClassifier(config.SentimentConfig{Provider: config.ProviderHuggingFace})
	assert.ErrorIs(t, err, sentiment.ErrMissingToken)

	c, err := NewClassifier(config.SentimentConfig{Provider: config.ProviderHuggingFace, Token: "hf_x"})
	require.NoError(t, err)
	assert.IsType(t, &sentiment.HuggingFaceClassifier{}, c)

	_, err = NewClassifier(config.SentimentConfig{Provider: "vader", Token: "x"})
	assert.Error(t, err)
}
