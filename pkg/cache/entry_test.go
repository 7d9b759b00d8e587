package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"expired an hour ago", time.Now().Add(-time.Hour), true},
		{"valid for an hour", time.Now().Add(time.Hour), false},
		{"zero value", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_TTL(t *testing.T) {
	future := &CacheEntry{Expires: time.Now().Add(6 * time.Hour)}
	if got := future.TTL(); got < 6*time.Hour-time.Minute || got > 6*time.Hour {
		t.Errorf("TTL() = %v, want ~6h", got)
	}

	past := &CacheEntry{Expires: time.Now().Add(-time.Minute)}
	if got := past.TTL(); got != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", got)
	}
}
