package collector

import (
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/youtube"
)

// Field is one scalar column of the flattened video schema.
type Field struct {
	Group  string
	Name   string
	Column string
	get    func(youtube.Video) *string
	set    func(*record.VideoRecord, *string)
}

// VideoFields is the declared schema. Every field is optional: a missing
// group or key yields nil. Tags is a list and handled by FlattenVideo.
var VideoFields = []Field{
	{"snippet", "channelTitle", record.ColChannelTitle,
		func(v youtube.Video) *string { return snippet(v, func(s *youtube.VideoSnippet) *string { return s.ChannelTitle }) },
		func(r *record.VideoRecord, s *string) { r.ChannelTitle = s }},
	{"snippet", "title", record.ColTitle,
		func(v youtube.Video) *string { return snippet(v, func(s *youtube.VideoSnippet) *string { return s.Title }) },
		func(r *record.VideoRecord, s *string) { r.Title = s }},
	{"snippet", "description", record.ColDescription,
		func(v youtube.Video) *string { return snippet(v, func(s *youtube.VideoSnippet) *string { return s.Description }) },
		func(r *record.VideoRecord, s *string) { r.Description = s }},
	{"snippet", "publishedAt", record.ColPublishedAt,
		func(v youtube.Video) *string { return snippet(v, func(s *youtube.VideoSnippet) *string { return s.PublishedAt }) },
		func(r *record.VideoRecord, s *string) { r.PublishedAt = s }},
	{"statistics", "viewCount", record.ColViewCount,
		func(v youtube.Video) *string { return stats(v, func(s *youtube.VideoStatistics) *string { return s.ViewCount }) },
		func(r *record.VideoRecord, s *string) { r.ViewCount = s }},
	{"statistics", "likeCount", record.ColLikeCount,
		func(v youtube.Video) *string { return stats(v, func(s *youtube.VideoStatistics) *string { return s.LikeCount }) },
		func(r *record.VideoRecord, s *string) { r.LikeCount = s }},
	{"statistics", "favoriteCount", record.ColFavouriteCount,
		func(v youtube.Video) *string { return stats(v, func(s *youtube.VideoStatistics) *string { return s.FavoriteCount }) },
		func(r *record.VideoRecord, s *string) { r.FavouriteCount = s }},
	{"statistics", "commentCount", record.ColCommentCount,
		func(v youtube.Video) *string { return stats(v, func(s *youtube.VideoStatistics) *string { return s.CommentCount }) },
		func(r *record.VideoRecord, s *string) { r.CommentCount = s }},
	{"contentDetails", "duration", record.ColDuration,
		func(v youtube.Video) *string { return details(v, func(d *youtube.VideoContentDetails) *string { return d.Duration }) },
		func(r *record.VideoRecord, s *string) { r.Duration = s }},
	{"contentDetails", "definition", record.ColDefinition,
		func(v youtube.Video) *string { return details(v, func(d *youtube.VideoContentDetails) *string { return d.Definition }) },
		func(r *record.VideoRecord, s *string) { r.Definition = s }},
	{"contentDetails", "caption", record.ColCaption,
		func(v youtube.Video) *string { return details(v, func(d *youtube.VideoContentDetails) *string { return d.Caption }) },
		func(r *record.VideoRecord, s *string) { r.Caption = s }},
}

// FlattenVideo maps an API item onto the declared schema. It never fails.
func FlattenVideo(v youtube.Video) record.VideoRecord {
	rec := record.VideoRecord{VideoID: v.ID}
	for _, f := range VideoFields {
		f.set(&rec, f.get(v))
	}
	if v.Snippet != nil {
		rec.Tags = v.Snippet.Tags
	}
	return rec
}

func snippet(v youtube.Video, get func(*youtube.VideoSnippet) *string) *string {
	if v.Snippet == nil {
		return nil
	}
	return get(v.Snippet)
}

func stats(v youtube.Video, get func(*youtube.VideoStatistics) *string) *string {
	if v.Statistics == nil {
		return nil
	}
	return get(v.Statistics)
}

func details(v youtube.Video, get func(*youtube.VideoContentDetails) *string) *string {
	if v.ContentDetails == nil {
		return nil
	}
	return get(v.ContentDetails)
}
