// Package normalize turns raw video records into typed ones: counts become
// integers, timestamps become times with a weekday, durations become seconds.
// Values that fail to parse become null; normalization never fails.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
)

// timestampLayouts are tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses RFC 3339 and the common ISO 8601 variants. Values
// without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCount parses a count, accepting integral floats such as "12.0".
// Anything else is null.
func ParseCount(s *string) *int64 {
	if s == nil {
		return nil
	}
	text := strings.TrimSpace(*s)
	if text == "" {
		return nil
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &v
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) ||
		f >= 1<<63 || f < -(1<<63) {
		return nil
	}
	v := int64(f)
	return &v
}

// Video normalizes a single record.
func Video(v record.VideoRecord) record.NormalizedVideoRecord {
	n := record.NormalizedVideoRecord{
		VideoID:        v.VideoID,
		ChannelTitle:   v.ChannelTitle,
		Title:          v.Title,
		Description:    v.Description,
		Tags:           v.Tags,
		ViewCount:      ParseCount(v.ViewCount),
		LikeCount:      ParseCount(v.LikeCount),
		FavouriteCount: ParseCount(v.FavouriteCount),
		CommentCount:   ParseCount(v.CommentCount),
		Duration:       v.Duration,
		Definition:     v.Definition,
		Caption:        v.Caption,
		TagCount:       len(v.Tags),
	}

	if v.PublishedAt != nil {
		if t, ok := ParseTimestamp(*v.PublishedAt); ok {
			day := t.Weekday().String()
			n.PublishedAt = &t
			n.PublishDayName = &day
		}
	}

	if v.Duration != nil {
		if secs, err := DurationSeconds(strings.TrimSpace(*v.Duration)); err == nil {
			n.DurationSecs = &secs
		}
	}

	return n
}

// Normalize maps Video over records, preserving order and length.
func Normalize(videos []record.VideoRecord) []record.NormalizedVideoRecord {
	out := make([]record.NormalizedVideoRecord, len(videos))
	for i, v := range videos {
		out[i] = Video(v)
	}
	return out
}
