package youtube

// The generated youtube/v3 Video type decodes counts into uint64 with
// omitempty, which makes an absent count indistinguishable from zero. These
// types keep every field optional.

// VideoListResponse is the videos.list body.
type VideoListResponse struct {
	NextPageToken string  `json:"nextPageToken,omitempty"`
	Items         []Video `json:"items"`
}

// Video is one videos.list item.
type Video struct {
	ID             string               `json:"id"`
	Snippet        *VideoSnippet        `json:"snippet,omitempty"`
	Statistics     *VideoStatistics     `json:"statistics,omitempty"`
	ContentDetails *VideoContentDetails `json:"contentDetails,omitempty"`
}

// VideoSnippet holds the snippet part.
type VideoSnippet struct {
	ChannelTitle *string  `json:"channelTitle,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	PublishedAt  *string  `json:"publishedAt,omitempty"`
}

// VideoStatistics holds the statistics part. The API sends counts as
// decimal strings.
type VideoStatistics struct {
	ViewCount     *string `json:"viewCount,omitempty"`
	LikeCount     *string `json:"likeCount,omitempty"`
	FavoriteCount *string `json:"favoriteCount,omitempty"`
	CommentCount  *string `json:"commentCount,omitempty"`
}

// VideoContentDetails holds the contentDetails part.
type VideoContentDetails struct {
	Duration   *string `json:"duration,omitempty"`
	Definition *string `json:"definition,omitempty"`
	Caption    *string `json:"caption,omitempty"`
}
