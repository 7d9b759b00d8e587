package cache

import (
	"sort"
	"strings"
)

// apiKeyParam is stripped from keys so credentials never reach Redis.
const apiKeyParam = "key"

// CacheKey identifies a cached response.
type CacheKey struct {
	// Resource is the Data API collection, e.g. "playlistItems".
	Resource string

	// Params are the request's query parameters.
	Params map[string][]string
}

// String generates a deterministic key, e.g.
//
//	yt:playlistItems:maxResults=50:pageToken=CDIQAA:part=contentDetails:playlistId=UU123
func (k CacheKey) String() string {
	parts := []string{"yt"}

	if resource := strings.Trim(k.Resource, "/"); resource != "" {
		parts = append(parts, resource)
	}

	names := make([]string, 0, len(k.Params))
	for name := range k.Params {
		if name == apiKeyParam {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(k.Params[name], ","))
	}

	return strings.Join(parts, ":")
}
