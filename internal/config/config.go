// Package config loads pipeline settings from .env files, YT_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey = errors.New("YouTube API key is required")
	ErrInvalid       = errors.New("invalid configuration")
)

// EnvPrefix is prepended to every key when read from the environment, so
// sentiment.token becomes YT_SENTIMENT_TOKEN.
const EnvPrefix = "YT"

// Sentiment providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

// SentimentConfig selects and tunes the comment classifier. An empty BaseURL
// or Model uses the provider default.
type SentimentConfig struct {
	Provider    string
	Token       string
	Model       string
	BaseURL     string
	BatchSize   int
	MaxComments int
	Pace        time.Duration
}

// Config holds the pipeline settings.
type Config struct {
	APIKey string
	// APIBaseURL overrides the Data API root, e.g. for a recording proxy.
	APIBaseURL string
	ChannelIDs []string
	// PlaylistID overrides the uploads playlists found by channel-stats.
	PlaylistID string
	DataDir    string
	RedisURL   string
	DailyQuota int

	PageSize   int
	BatchSize  int
	CommentCap int
	Sentiment  SentimentConfig

	Retries    int
	RetryDelay time.Duration
	Snapshots  bool
	SQLitePath string

	PushgatewayURL string
	LogLevel       string
	LogPretty      bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("daily_quota", 10000)
	v.SetDefault("page_size", 50)
	v.SetDefault("batch_size", 50)
	v.SetDefault("comment_cap", 10)
	v.SetDefault("sentiment.provider", ProviderHuggingFace)
	v.SetDefault("sentiment.batch_size", 100)
	v.SetDefault("sentiment.max_comments", 500)
	v.SetDefault("sentiment.pace", 100*time.Millisecond)
	v.SetDefault("retries", 3)
	v.SetDefault("retry_delay", 5*time.Minute)
	v.SetDefault("snapshots", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// envOnly lists keys without a default; they are bound explicitly so the
// environment is consulted for them too.
var envOnly = []string{
	"channel_ids", "playlist_id", "redis_url", "sentiment.token",
	"sentiment.model", "sentiment.base_url", "api_base_url", "sqlite_path",
	"pushgateway_url",
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration. file is an optional YAML/JSON/TOML config file;
// environment variables win over it.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envOnly {
		_ = v.BindEnv(k)
	}
	// Accept the variable name most YouTube tooling uses.
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "YOUTUBE_API_KEY")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		APIKey:     strings.TrimSpace(v.GetString("api_key")),
		APIBaseURL: v.GetString("api_base_url"),
		ChannelIDs: splitList(v.GetStringSlice("channel_ids")),
		PlaylistID: v.GetString("playlist_id"),
		DataDir:    v.GetString("data_dir"),
		RedisURL:   v.GetString("redis_url"),
		DailyQuota: v.GetInt("daily_quota"),
		PageSize:   v.GetInt("page_size"),
		BatchSize:  v.GetInt("batch_size"),
		CommentCap: v.GetInt("comment_cap"),
		Sentiment: SentimentConfig{
			Provider:    strings.ToLower(v.GetString("sentiment.provider")),
			Token:       v.GetString("sentiment.token"),
			Model:       v.GetString("sentiment.model"),
			BaseURL:     v.GetString("sentiment.base_url"),
			BatchSize:   v.GetInt("sentiment.batch_size"),
			MaxComments: v.GetInt("sentiment.max_comments"),
			Pace:        v.GetDuration("sentiment.pace"),
		},
		Retries:        v.GetInt("retries"),
		RetryDelay:     v.GetDuration("retry_delay"),
		Snapshots:      v.GetBool("snapshots"),
		SQLitePath:     v.GetString("sqlite_path"),
		PushgatewayURL: v.GetString("pushgateway_url"),
		LogLevel:       v.GetString("log_level"),
		LogPretty:      v.GetBool("log_pretty"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set YT_API_KEY or YOUTUBE_API_KEY", ErrMissingAPIKey)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must be >= 0, got %d", ErrInvalid, c.Retries)
	}
	if c.CommentCap < 1 {
		return fmt.Errorf("%w: comment_cap must be >= 1, got %d", ErrInvalid, c.CommentCap)
	}
	switch c.Sentiment.Provider {
	case ProviderHuggingFace, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown sentiment provider %q", ErrInvalid, c.Sentiment.Provider)
	}
	return nil
}

// splitList accepts both real lists and comma-separated strings, the form
// lists take in environment variables.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
