package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "resource only",
			key:  CacheKey{Resource: "channels"},
			want: "yt:channels",
		},
		{
			name: "params are sorted",
			key: CacheKey{
				Resource: "playlistItems",
				Params: url.Values{
					"playlistId": {"UU123"},
					"part":       {"contentDetails"},
					"maxResults": {"50"},
				},
			},
			want: "yt:playlistItems:maxResults=50:part=contentDetails:playlistId=UU123",
		},
		{
			name: "api key is never part of the key",
			key: CacheKey{
				Resource: "videos",
				Params:   url.Values{"id": {"a"}, "key": {"secret"}},
			},
			want: "yt:videos:id=a",
		},
		{
			name: "multi values are comma joined",
			key: CacheKey{
				Resource: "videos",
				Params:   url.Values{"part": {"snippet", "statistics"}},
			},
			want: "yt:videos:part=snippet,statistics",
		},
		{
			name: "slashes trimmed",
			key:  CacheKey{Resource: "/commentThreads/"},
			want: "yt:commentThreads",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKey_PageTokensDiffer(t *testing.T) {
	first := CacheKey{Resource: "playlistItems", Params: url.Values{"playlistId": {"UU1"}}}
	second := CacheKey{Resource: "playlistItems", Params: url.Values{"playlistId": {"UU1"}, "pageToken": {"CDIQAA"}}}

	if first.String() == second.String() {
		t.Error("pages of the same playlist must not share a cache key")
	}
}
