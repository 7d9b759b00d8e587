package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry reads resp into a CacheEntry and restores resp.Body for the
// caller. An Expires header in the future is honoured; anything else falls
// back to fallbackTTL.
func ResponseToEntry(resp *http.Response, fallbackTTL time.Duration) (*CacheEntry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	return &CacheEntry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		Expires:    expiresAt(resp.Header, now, fallbackTTL),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   now,
	}, nil
}

func expiresAt(headers http.Header, now time.Time, fallbackTTL time.Duration) time.Time {
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultTTL
	}

	raw := headers.Get("Expires")
	if raw == "" {
		return now.Add(fallbackTTL)
	}

	expires, err := http.ParseTime(raw)
	if err != nil || !expires.After(now) {
		// Google sends "Expires: Mon, 01 Jan 1990 00:00:00 GMT".
		return now.Add(fallbackTTL)
	}
	return expires
}

// ShouldMakeConditionalRequest reports whether entry carries an ETag.
func ShouldMakeConditionalRequest(entry *CacheEntry) bool {
	return entry != nil && entry.ETag != ""
}

// AddConditionalHeaders sets If-None-Match from the cached ETag.
func AddConditionalHeaders(req *http.Request, entry *CacheEntry) {
	if req == nil || !ShouldMakeConditionalRequest(entry) {
		return
	}
	req.Header.Set("If-None-Match", entry.ETag)
}

// EntryToResponse rebuilds an HTTP response from a cached entry.
func EntryToResponse(entry *CacheEntry, req *http.Request) *http.Response {
	header := entry.Headers.Clone()
	if header == nil {
		header = make(http.Header)
	}

	status := entry.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
		Request:       req,
	}
}
