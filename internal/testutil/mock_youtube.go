// Package testutil provides a fake YouTube Data API for tests.
package testutil

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
)

// MockYouTube serves channels, playlistItems, videos and commentThreads from
// in-memory fixtures. Responses carry an ETag and honour If-None-Match.
type MockYouTube struct {
	server *httptest.Server

	mu            sync.RWMutex
	handlers      map[string]http.HandlerFunc
	channels      map[string]map[string]any
	playlists     map[string][]string
	videos        map[string]map[string]any
	comments      map[string][]string
	commentErrors map[string]mockError

	// Tracking
	RequestCount     int
	ConditionalCount int
	calls            map[string][]url.Values
}

type mockError struct {
	status int
	reason string
}

// NewMockYouTube starts a fake Data API server.
func NewMockYouTube() *MockYouTube {
	m := &MockYouTube{
		handlers:      make(map[string]http.HandlerFunc),
		channels:      make(map[string]map[string]any),
		playlists:     make(map[string][]string),
		videos:        make(map[string]map[string]any),
		comments:      make(map[string][]string),
		commentErrors: make(map[string]mockError),
		calls:         make(map[string][]url.Values),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := path.Base(r.URL.Path)

		m.mu.Lock()
		m.RequestCount++
		if r.Header.Get("If-None-Match") != "" {
			m.ConditionalCount++
		}
		m.calls[resource] = append(m.calls[resource], r.URL.Query())
		handler, ok := m.handlers[resource]
		m.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}
		m.route(w, r, resource)
	}))

	return m
}

// URL returns the server root, usable as a client base URL.
func (m *MockYouTube) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockYouTube) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockYouTube) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.calls = make(map[string][]url.Values)
}

// SetHandler overrides the handler for a resource such as "videos".
func (m *MockYouTube) SetHandler(resource string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[resource] = handler
}

// AddChannel registers a channel with its uploads playlist.
func (m *MockYouTube) AddChannel(id, title, uploads string, subscribers, views, videos int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[id] = map[string]any{
		"kind":    "youtube#channel",
		"id":      id,
		"snippet": map[string]any{"title": title},
		"statistics": map[string]any{
			"subscriberCount": strconv.FormatInt(subscribers, 10),
			"viewCount":       strconv.FormatInt(views, 10),
			"videoCount":      strconv.FormatInt(videos, 10),
		},
		"contentDetails": map[string]any{
			"relatedPlaylists": map[string]any{"uploads": uploads},
		},
	}
}

// SetPlaylist sets the ordered video ids of a playlist.
func (m *MockYouTube) SetPlaylist(id string, videoIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlists[id] = append([]string(nil), videoIDs...)
}

// AddVideo registers a raw videos.list item. The "id" key is set from id.
func (m *MockYouTube) AddVideo(id string, item map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item == nil {
		item = map[string]any{}
	}
	item["id"] = id
	m.videos[id] = item
}

// SetComments sets the top-level comments of a video.
func (m *MockYouTube) SetComments(videoID string, comments []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[videoID] = comments
}

// FailComments makes commentThreads.list fail for videoID.
func (m *MockYouTube) FailComments(videoID string, status int, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commentErrors[videoID] = mockError{status: status, reason: reason}
}

// Calls returns the query of every request made to resource.
func (m *MockYouTube) Calls(resource string) []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]url.Values(nil), m.calls[resource]...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockYouTube) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockYouTube) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

func (m *MockYouTube) route(w http.ResponseWriter, r *http.Request, resource string) {
	q := r.URL.Query()
	if q.Get("key") == "" {
		WriteError(w, http.StatusForbidden, "forbidden", "The request is missing a valid API key.")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch resource {
	case "channels":
		var items []any
		for _, id := range splitIDs(q.Get("id")) {
			if ch, ok := m.channels[id]; ok {
				items = append(items, ch)
			}
		}
		writeList(w, r, "youtube#channelListResponse", items, "")

	case "playlistItems":
		ids, ok := m.playlists[q.Get("playlistId")]
		if !ok {
			WriteError(w, http.StatusNotFound, "playlistNotFound", "The playlist identified with the request's playlistId parameter cannot be found.")
			return
		}
		size := 5
		if n, err := strconv.Atoi(q.Get("maxResults")); err == nil && n > 0 && n <= 50 {
			size = n
		}
		offset := 0
		if token := q.Get("pageToken"); token != "" {
			offset, _ = strconv.Atoi(strings.TrimPrefix(token, "page-"))
		}
		end := min(offset+size, len(ids))
		var items []any
		for _, id := range ids[min(offset, end):end] {
			items = append(items, map[string]any{
				"kind":           "youtube#playlistItem",
				"contentDetails": map[string]any{"videoId": id},
			})
		}
		next := ""
		if end < len(ids) {
			next = fmt.Sprintf("page-%d", end)
		}
		writeList(w, r, "youtube#playlistItemListResponse", items, next)

	case "videos":
		ids := splitIDs(q.Get("id"))
		if len(ids) > 50 {
			WriteError(w, http.StatusBadRequest, "invalidParameter", "too many ids")
			return
		}
		var items []any
		for _, id := range ids {
			if v, ok := m.videos[id]; ok {
				items = append(items, v)
			}
		}
		writeList(w, r, "youtube#videoListResponse", items, "")

	case "commentThreads":
		videoID := q.Get("videoId")
		if e, ok := m.commentErrors[videoID]; ok {
			WriteError(w, e.status, e.reason, "comment fetch failed for "+videoID)
			return
		}
		limit := 20
		if n, err := strconv.Atoi(q.Get("maxResults")); err == nil && n > 0 {
			limit = n
		}
		var items []any
		for i, text := range m.comments[videoID] {
			if i >= limit {
				break
			}
			items = append(items, map[string]any{
				"kind": "youtube#commentThread",
				"snippet": map[string]any{
					"videoId": videoID,
					"topLevelComment": map[string]any{
						"snippet": map[string]any{"textOriginal": text, "textDisplay": text},
					},
				},
			})
		}
		writeList(w, r, "youtube#commentThreadListResponse", items, "")

	default:
		WriteError(w, http.StatusNotFound, "notFound", "unknown resource "+resource)
	}
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func writeList(w http.ResponseWriter, r *http.Request, kind string, items []any, next string) {
	if items == nil {
		items = []any{}
	}
	body := map[string]any{"kind": kind, "items": items}
	if next != "" {
		body["nextPageToken"] = next
	}
	WriteJSON(w, r, body)
}

// WriteJSON writes body with an ETag and answers 304 when the request's
// If-None-Match matches it.
func WriteJSON(w http.ResponseWriter, r *http.Request, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	etag := fmt.Sprintf(`"%x"`, sha256.Sum256(data))

	w.Header().Set("ETag", etag)
	w.Header().Set("Expires", "Mon, 01 Jan 1990 00:00:00 GMT")
	w.Header().Set("Cache-Control", "private, max-age=0")
	if r != nil && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Write(data)
}

// ErrorBody renders a Google API error envelope.
func ErrorBody(status int, reason, message string) string {
	data, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors": []any{map[string]any{
				"message": message,
				"domain":  "youtube",
				"reason":  reason,
			}},
		},
	})
	return string(data)
}

// WriteError writes a Google API error envelope.
func WriteError(w http.ResponseWriter, status int, reason, message string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	w.Write([]byte(ErrorBody(status, reason, message)))
}

// VideoItem builds a complete videos.list item.
func VideoItem(title, publishedAt, duration string, views int64, tags ...string) map[string]any {
	snippet := map[string]any{
		"channelTitle": "Mock Channel",
		"title":        title,
		"description":  "about " + title,
		"publishedAt":  publishedAt,
	}
	if tags != nil {
		snippet["tags"] = tags
	}
	return map[string]any{
		"kind":    "youtube#video",
		"snippet": snippet,
		"statistics": map[string]any{
			"viewCount":     strconv.FormatInt(views, 10),
			"likeCount":     strconv.FormatInt(views/10, 10),
			"favoriteCount": "0",
			"commentCount":  strconv.FormatInt(views/100, 10),
		},
		"contentDetails": map[string]any{
			"duration":   duration,
			"definition": "hd",
			"caption":    "false",
		},
	}
}
