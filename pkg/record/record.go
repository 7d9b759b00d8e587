// Package record defines the rows that flow between pipeline stages and their
// tabular form.
//
// Optional fields are pointers (or nil slices); nil is the null marker and is
// written as an empty cell.
package record

import "time"

// ChannelStat is one channel as returned by channels.list.
type ChannelStat struct {
	ChannelID   string
	ChannelName string
	Subscribers int64
	Views       int64
	TotalVideos int64
	// PlaylistID is the channel's uploads playlist.
	PlaylistID string
}

// VideoRecord is a flattened videos.list item. Numeric and timestamp values
// keep the text the API sent.
type VideoRecord struct {
	VideoID string

	// snippet
	ChannelTitle *string
	Title        *string
	Description  *string
	Tags         []string
	PublishedAt  *string

	// statistics
	ViewCount      *string
	LikeCount      *string
	FavouriteCount *string
	CommentCount   *string

	// contentDetails
	Duration   *string
	Definition *string
	Caption    *string
}

// NormalizedVideoRecord is a VideoRecord with typed columns and derived
// fields.
type NormalizedVideoRecord struct {
	VideoID      string
	ChannelTitle *string
	Title        *string
	Description  *string
	Tags         []string
	PublishedAt  *time.Time

	ViewCount      *int64
	LikeCount      *int64
	FavouriteCount *int64
	CommentCount   *int64

	Duration   *string
	Definition *string
	Caption    *string

	PublishDayName *string
	DurationSecs   *int64
	TagCount       int
}

// CommentBundle holds the top-level comments fetched for one video.
type CommentBundle struct {
	VideoID  string
	Comments []string
}

// CommentRow is one comment of an exploded bundle.
type CommentRow struct {
	VideoID string
	Comment string
}

// SentimentRow is a comment with its classifier label and confidence.
type SentimentRow struct {
	VideoID string
	Comment string
	Label   string
	Score   float64
}

// Explode flattens bundles into one row per comment, keeping order.
func Explode(bundles []CommentBundle) []CommentRow {
	var rows []CommentRow
	for _, b := range bundles {
		for _, c := range b.Comments {
			rows = append(rows, CommentRow{VideoID: b.VideoID, Comment: c})
		}
	}
	return rows
}
