package record

import (
	"fmt"
	"strconv"
	"time"
)

// Column names shared by the stage files.
const (
	ColChannelID      = "channelId"
	ColChannelName    = "channelName"
	ColSubscribers    = "subscribers"
	ColViews          = "views"
	ColTotalVideos    = "totalVideos"
	ColPlaylistID     = "playlistId"
	ColVideoID        = "video_id"
	ColChannelTitle   = "channelTitle"
	ColTitle          = "title"
	ColDescription    = "description"
	ColTags           = "tags"
	ColPublishedAt    = "publishedAt"
	ColViewCount      = "viewCount"
	ColLikeCount      = "likeCount"
	ColFavouriteCount = "favouriteCount"
	ColCommentCount   = "commentCount"
	ColDuration       = "duration"
	ColDefinition     = "definition"
	ColCaption        = "caption"
	ColPublishDayName = "publishDayName"
	ColDurationSecs   = "durationSecs"
	ColTagCount       = "tagCount"
	ColComments       = "comments"
	ColComment        = "comment"
	ColSentiment      = "sentiment"
	ColSentimentScore = "sentiment_score"
)

var videoHeader = []string{
	ColVideoID, ColChannelTitle, ColTitle, ColDescription, ColTags, ColPublishedAt,
	ColViewCount, ColLikeCount, ColFavouriteCount, ColCommentCount,
	ColDuration, ColDefinition, ColCaption,
}

// ChannelStatsTable converts channel stats to a table.
func ChannelStatsTable(stats []ChannelStat) Table {
	t := Table{Header: []string{ColChannelID, ColChannelName, ColSubscribers, ColViews, ColTotalVideos, ColPlaylistID}}
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.ChannelID,
			s.ChannelName,
			strconv.FormatInt(s.Subscribers, 10),
			strconv.FormatInt(s.Views, 10),
			strconv.FormatInt(s.TotalVideos, 10),
			s.PlaylistID,
		})
	}
	return t
}

// ParseChannelStats reads a channel stats table. Only playlistId is required.
func ParseChannelStats(t Table) ([]ChannelStat, error) {
	idx, err := t.columns([]string{ColPlaylistID}, ColChannelID, ColChannelName, ColSubscribers, ColViews, ColTotalVideos)
	if err != nil {
		return nil, err
	}

	stats := make([]ChannelStat, 0, t.Len())
	for n, row := range t.Rows {
		s := ChannelStat{
			ChannelID:   cell(row, idx[ColChannelID]),
			ChannelName: cell(row, idx[ColChannelName]),
			PlaylistID:  cell(row, idx[ColPlaylistID]),
		}
		for col, dst := range map[string]*int64{
			ColSubscribers: &s.Subscribers,
			ColViews:       &s.Views,
			ColTotalVideos: &s.TotalVideos,
		} {
			v, err := parseInt(cell(row, idx[col]))
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+1, col, err)
			}
			if v != nil {
				*dst = *v
			}
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// VideoIDsTable converts identifiers to a single-column table.
func VideoIDsTable(ids []string) Table {
	t := Table{Header: []string{ColVideoID}}
	for _, id := range ids {
		t.Rows = append(t.Rows, []string{id})
	}
	return t
}

// ParseVideoIDs reads the video_id column.
func ParseVideoIDs(t Table) ([]string, error) {
	idx, err := t.columns([]string{ColVideoID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		ids = append(ids, cell(row, idx[ColVideoID]))
	}
	return ids, nil
}

// VideosTable converts raw video records to a table.
func VideosTable(videos []VideoRecord) Table {
	t := Table{Header: append([]string(nil), videoHeader...)}
	for _, v := range videos {
		t.Rows = append(t.Rows, []string{
			v.VideoID,
			deref(v.ChannelTitle),
			deref(v.Title),
			deref(v.Description),
			encodeList(v.Tags),
			deref(v.PublishedAt),
			deref(v.ViewCount),
			deref(v.LikeCount),
			deref(v.FavouriteCount),
			deref(v.CommentCount),
			deref(v.Duration),
			deref(v.Definition),
			deref(v.Caption),
		})
	}
	return t
}

// ParseVideos reads a raw video table. Columns other than video_id may be
// absent and read as null.
func ParseVideos(t Table) ([]VideoRecord, error) {
	idx, err := t.columns([]string{ColVideoID}, videoHeader[1:]...)
	if err != nil {
		return nil, err
	}

	videos := make([]VideoRecord, 0, t.Len())
	for n, row := range t.Rows {
		tags, err := decodeList(cell(row, idx[ColTags]))
		if err != nil {
			return nil, fmt.Errorf("row %d: tags: %w", n+1, err)
		}
		get := func(col string) *string { return nullable(cell(row, idx[col])) }

		videos = append(videos, VideoRecord{
			VideoID:        cell(row, idx[ColVideoID]),
			ChannelTitle:   get(ColChannelTitle),
			Title:          get(ColTitle),
			Description:    get(ColDescription),
			Tags:           tags,
			PublishedAt:    get(ColPublishedAt),
			ViewCount:      get(ColViewCount),
			LikeCount:      get(ColLikeCount),
			FavouriteCount: get(ColFavouriteCount),
			CommentCount:   get(ColCommentCount),
			Duration:       get(ColDuration),
			Definition:     get(ColDefinition),
			Caption:        get(ColCaption),
		})
	}
	return videos, nil
}

// NormalizedTable converts normalized records to a table. Timestamps are
// written as RFC 3339.
func NormalizedTable(videos []NormalizedVideoRecord) Table {
	header := append(append([]string(nil), videoHeader...), ColPublishDayName, ColDurationSecs, ColTagCount)
	t := Table{Header: header}
	for _, v := range videos {
		published := ""
		if v.PublishedAt != nil {
			published = v.PublishedAt.Format(time.RFC3339)
		}
		t.Rows = append(t.Rows, []string{
			v.VideoID,
			deref(v.ChannelTitle),
			deref(v.Title),
			deref(v.Description),
			encodeList(v.Tags),
			published,
			formatInt(v.ViewCount),
			formatInt(v.LikeCount),
			formatInt(v.FavouriteCount),
			formatInt(v.CommentCount),
			deref(v.Duration),
			deref(v.Definition),
			deref(v.Caption),
			deref(v.PublishDayName),
			formatInt(v.DurationSecs),
			strconv.Itoa(v.TagCount),
		})
	}
	return t
}

// ParseNormalized reads a table written by NormalizedTable.
func ParseNormalized(t Table) ([]NormalizedVideoRecord, error) {
	optional := append(append([]string(nil), videoHeader[1:]...), ColPublishDayName, ColDurationSecs, ColTagCount)
	idx, err := t.columns([]string{ColVideoID}, optional...)
	if err != nil {
		return nil, err
	}

	videos := make([]NormalizedVideoRecord, 0, t.Len())
	for n, row := range t.Rows {
		get := func(col string) *string { return nullable(cell(row, idx[col])) }
		v := NormalizedVideoRecord{
			VideoID:        cell(row, idx[ColVideoID]),
			ChannelTitle:   get(ColChannelTitle),
			Title:          get(ColTitle),
			Description:    get(ColDescription),
			Duration:       get(ColDuration),
			Definition:     get(ColDefinition),
			Caption:        get(ColCaption),
			PublishDayName: get(ColPublishDayName),
		}

		if v.Tags, err = decodeList(cell(row, idx[ColTags])); err != nil {
			return nil, fmt.Errorf("row %d: tags: %w", n+1, err)
		}

		if s := cell(row, idx[ColPublishedAt]); s != "" {
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+1, ColPublishedAt, err)
			}
			v.PublishedAt = &ts
		}

		for col, dst := range map[string]**int64{
			ColViewCount:      &v.ViewCount,
			ColLikeCount:      &v.LikeCount,
			ColFavouriteCount: &v.FavouriteCount,
			ColCommentCount:   &v.CommentCount,
			ColDurationSecs:   &v.DurationSecs,
		} {
			if *dst, err = parseInt(cell(row, idx[col])); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+1, col, err)
			}
		}

		if s := cell(row, idx[ColTagCount]); s != "" {
			if v.TagCount, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+1, ColTagCount, err)
			}
		} else {
			v.TagCount = len(v.Tags)
		}

		videos = append(videos, v)
	}
	return videos, nil
}

// CommentsTable converts bundles to a table with one JSON array cell per video.
func CommentsTable(bundles []CommentBundle) Table {
	t := Table{Header: []string{ColVideoID, ColComments}}
	for _, b := range bundles {
		comments := b.Comments
		if comments == nil {
			comments = []string{}
		}
		t.Rows = append(t.Rows, []string{b.VideoID, encodeList(comments)})
	}
	return t
}

// ParseComments reads a table written by CommentsTable.
func ParseComments(t Table) ([]CommentBundle, error) {
	idx, err := t.columns([]string{ColVideoID, ColComments})
	if err != nil {
		return nil, err
	}

	bundles := make([]CommentBundle, 0, t.Len())
	for n, row := range t.Rows {
		comments, err := decodeList(cell(row, idx[ColComments]))
		if err != nil {
			return nil, fmt.Errorf("row %d: comments: %w", n+1, err)
		}
		bundles = append(bundles, CommentBundle{VideoID: cell(row, idx[ColVideoID]), Comments: comments})
	}
	return bundles, nil
}

// SentimentTable converts annotated comments to a table.
func SentimentTable(rows []SentimentRow) Table {
	t := Table{Header: []string{ColVideoID, ColComment, ColSentiment, ColSentimentScore}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.VideoID,
			r.Comment,
			r.Label,
			strconv.FormatFloat(r.Score, 'f', -1, 64),
		})
	}
	return t
}

// ParseSentiment reads a table written by SentimentTable.
func ParseSentiment(t Table) ([]SentimentRow, error) {
	idx, err := t.columns([]string{ColVideoID, ColComment, ColSentiment, ColSentimentScore})
	if err != nil {
		return nil, err
	}

	rows := make([]SentimentRow, 0, t.Len())
	for n, row := range t.Rows {
		score, err := strconv.ParseFloat(cell(row, idx[ColSentimentScore]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", n+1, ColSentimentScore, err)
		}
		rows = append(rows, SentimentRow{
			VideoID: cell(row, idx[ColVideoID]),
			Comment: cell(row, idx[ColComment]),
			Label:   cell(row, idx[ColSentiment]),
			Score:   score,
		})
	}
	return rows, nil
}
