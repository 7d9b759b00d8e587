package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCounts(t *testing.T) {
	s := NewSummary("comments")
	s.OK("a")
	s.Skip("b", errors.New("commentsDisabled"))
	s.OK("c")
	s.Skip("d", errors.New("videoNotFound"))

	assert.Equal(t, 2, s.Succeeded())
	assert.Equal(t, 2, s.Skipped())

	failures := s.Failures()
	if assert.Len(t, failures, 2) {
		assert.Equal(t, "b", failures[0].Item)
		assert.EqualError(t, failures[1].Err, "videoNotFound")
	}
	assert.Equal(t, "comments: 2 ok, 2 skipped (b, d)", s.String())
}

func TestSummaryStringWithoutFailures(t *testing.T) {
	s := NewSummary("charts")
	s.OK("top_9_best_performing_videos")

	assert.Equal(t, "charts: 1 ok, 0 skipped", s.String())
}
