// Package quota tracks YouTube Data API quota units spent per quota day and
// gates requests before the daily budget runs out.
//
// The Data API reports no remaining-quota headers, so the ledger counts the
// units this client has spent. A quotaExceeded response marks the day as
// exhausted regardless of the ledger.
package quota

import (
	"time"
	_ "time/tzdata"
)

// Redis key prefix for the per-day ledger. The full key is prefix + day.
const RedisKeyPrefix = "yt:quota:used:"

// Defaults for a project with the standard allocation.
const (
	// DefaultDailyLimit is the default daily quota of a Data API project.
	DefaultDailyLimit = 10000

	// CostList is the unit cost of every list call the pipeline makes.
	CostList = 1

	// DefaultCriticalReserve blocks requests when fewer units remain.
	DefaultCriticalReserve = 50

	// DefaultWarningReserve throttles requests when fewer units remain.
	DefaultWarningReserve = 500
)

// Quota days roll over at midnight Pacific time.
var pacific = loadPacific()

func loadPacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
}

// Day returns the quota day key for now and the instant the day resets.
func Day(now time.Time) (string, time.Time) {
	local := now.In(pacific)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, pacific)
	return local.Format("2006-01-02"), midnight.AddDate(0, 0, 1)
}

// State is the ledger for one quota day.
type State struct {
	Day     string    `json:"day"`
	Used    int       `json:"used"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"reset_at"`

	// IsHealthy is true while more than the warning reserve remains.
	IsHealthy bool `json:"is_healthy"`

	critical int
	warning  int
}

// Remaining returns the units left today, never negative.
func (s *State) Remaining() int {
	if r := s.Limit - s.Used; r > 0 {
		return r
	}
	return 0
}

// NeedsCriticalBlock reports whether requests must stop until the reset.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining() < s.critical
}

// NeedsThrottling reports whether requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Remaining() < s.warning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the quota day rolls over.
func (s *State) TimeUntilReset() time.Duration {
	if d := time.Until(s.ResetAt); d > 0 {
		return d
	}
	return 0
}

// UpdateHealth recomputes IsHealthy from Used and Limit.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining() >= s.warning
}
