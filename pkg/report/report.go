// Package report aggregates per-item outcomes (one video's comments, one
// chart) into a run summary instead of relying on swallowed errors.
package report

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
)

// Result records what happened to one item.
type Result struct {
	Item   string
	Status Status
	Err    error
}

// Summary collects item results for a stage.
type Summary struct {
	Name    string
	Results []Result
}

// NewSummary creates an empty summary for the named stage or job.
func NewSummary(name string) *Summary {
	return &Summary{Name: name}
}

// OK records a successful item.
func (s *Summary) OK(item string) {
	s.Results = append(s.Results, Result{Item: item, Status: StatusOK})
}

// Skip records an item that was dropped because of err.
func (s *Summary) Skip(item string, err error) {
	s.Results = append(s.Results, Result{Item: item, Status: StatusSkipped, Err: err})
}

// Succeeded returns the number of items with StatusOK.
func (s *Summary) Succeeded() int {
	return s.count(StatusOK)
}

// Skipped returns the number of items with StatusSkipped.
func (s *Summary) Skipped() int {
	return s.count(StatusSkipped)
}

// Failures returns the skipped results in the order they were recorded.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == StatusSkipped {
			out = append(out, r)
		}
	}
	return out
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// String renders a one-line summary such as "comments: 7 ok, 3 skipped (abc, def, ghi)".
func (s *Summary) String() string {
	line := fmt.Sprintf("%s: %d ok, %d skipped", s.Name, s.Succeeded(), s.Skipped())
	failures := s.Failures()
	if len(failures) == 0 {
		return line
	}

	items := make([]string, len(failures))
	for i, f := range failures {
		items[i] = f.Item
	}
	return line + " (" + strings.Join(items, ", ") + ")"
}
