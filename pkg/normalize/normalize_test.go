package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestParseCount(t *testing.T) {
	a := assert.New(t)

	for _, tc := range []struct {
		in   *string
		want *int64
	}{
		{str("42"), ptr(42)},
		{str(" 7 "), ptr(7)},
		{str("12.0"), ptr(12)},
		{str("1e3"), ptr(1000)},
		{str("-3"), ptr(-3)},
		{str("12.5"), nil},
		{str("abc"), nil},
		{str(""), nil},
		{str("NaN"), nil},
		{str("Inf"), nil},
		{str("9223372036854775808.0"), nil},
		{str("-9223372036854775808.0"), ptr(math.MinInt64)},
		{nil, nil},
	} {
		got := ParseCount(tc.in)
		if tc.want == nil {
			a.Nil(got, "%v", tc.in)
			continue
		}
		if a.NotNil(got, *tc.in) {
			a.Equal(*tc.want, *got, *tc.in)
		}
	}
}

func ptr(v int64) *int64 { return &v }

func TestParseTimestamp(t *testing.T) {
	a := assert.New(t)

	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:30:00.123Z", time.Date(2024, 1, 1, 10, 30, 0, 123000000, time.UTC)},
		{"2024-01-01T00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 08:00:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	} {
		got, ok := ParseTimestamp(tc.in)
		if a.True(ok, tc.in) {
			a.True(tc.want.Equal(got), "%s: got %v", tc.in, got)
		}
	}

	_, ok := ParseTimestamp("not-a-date")
	a.False(ok)
	_, ok = ParseTimestamp("")
	a.False(ok)
}

func TestVideo_Full(t *testing.T) {
	n := Video(record.VideoRecord{
		VideoID:        "v1",
		Title:          str("Hello"),
		Tags:           []string{"a", "b", "c"},
		PublishedAt:    str("2024-01-01T00:00:00Z"),
		ViewCount:      str("1000"),
		LikeCount:      str("12.0"),
		FavouriteCount: str("0"),
		CommentCount:   str("n/a"),
		Duration:       str("PT1H2M3S"),
	})

	require.NotNil(t, n.PublishedAt)
	assert.Equal(t, "Monday", *n.PublishDayName)
	assert.Equal(t, int64(3723), *n.DurationSecs)
	assert.Equal(t, 3, n.TagCount)
	assert.Equal(t, int64(1000), *n.ViewCount)
	assert.Equal(t, int64(12), *n.LikeCount)
	assert.Equal(t, int64(0), *n.FavouriteCount)
	assert.Nil(t, n.CommentCount)
	assert.Equal(t, "Hello", *n.Title)
}

func TestVideo_Nulls(t *testing.T) {
	n := Video(record.VideoRecord{
		VideoID:     "v2",
		PublishedAt: str("yesterday"),
		Duration:    str("soon"),
	})

	assert.Nil(t, n.PublishedAt)
	assert.Nil(t, n.PublishDayName)
	assert.Nil(t, n.DurationSecs)
	assert.Nil(t, n.Tags)
	assert.Equal(t, 0, n.TagCount)
	assert.Nil(t, n.ViewCount)
}

func TestVideo_WeekdayInOwnZone(t *testing.T) {
	// Monday 23:30 in UTC-05:00 is already Tuesday in UTC.
	n := Video(record.VideoRecord{VideoID: "v", PublishedAt: str("2024-01-01T23:30:00-05:00")})
	require.NotNil(t, n.PublishDayName)
	assert.Equal(t, "Monday", *n.PublishDayName)
}

func TestNormalize_PreservesOrderAndLength(t *testing.T) {
	in := []record.VideoRecord{{VideoID: "a"}, {VideoID: "b"}, {VideoID: "c"}}
	out := Normalize(in)

	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].VideoID, out[i].VideoID)
	}
	assert.Empty(t, Normalize(nil))
}

func TestVideo_DurationOutOfRange(t *testing.T) {
	for _, d := range []string{"PT9999999999999H", "P99999999999W", "P106751DT23H47M17S"} {
		n := Video(record.VideoRecord{VideoID: "v", Duration: str(d)})
		assert.Nil(t, n.DurationSecs, d)
	}

	n := Video(record.VideoRecord{VideoID: "v", Duration: str("P106751DT23H47M16S")})
	require.NotNil(t, n.DurationSecs)
	assert.Equal(t, int64(9223372036), *n.DurationSecs)
}
