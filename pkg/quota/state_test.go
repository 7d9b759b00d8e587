package quota

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantDay   string
		wantReset time.Time
	}{
		{
			name:      "utc morning is previous pacific day",
			now:       time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC),
			wantDay:   "2024-01-01",
			wantReset: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "utc afternoon is same pacific day",
			now:       time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
			wantDay:   "2024-01-02",
			wantReset: time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "daylight saving time",
			now:       time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
			wantDay:   "2024-07-01",
			wantReset: time.Date(2024, 7, 2, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, reset := Day(tt.now)
			if day != tt.wantDay {
				t.Errorf("day = %s, want %s", day, tt.wantDay)
			}
			if !reset.Equal(tt.wantReset) {
				t.Errorf("reset = %v, want %v", reset.UTC(), tt.wantReset)
			}
		})
	}
}

func TestState_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		used         int
		wantHealthy  bool
		wantThrottle bool
		wantBlock    bool
	}{
		{"fresh day", 0, true, false, false},
		{"at warning boundary", 9500, true, false, false},
		{"below warning", 9501, false, true, false},
		{"at critical boundary", 9950, false, true, false},
		{"below critical", 9951, false, false, true},
		{"overspent", 12000, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{Used: tt.used, Limit: 10000, critical: 50, warning: 500}
			s.UpdateHealth()

			if s.IsHealthy != tt.wantHealthy {
				t.Errorf("IsHealthy = %v, want %v", s.IsHealthy, tt.wantHealthy)
			}
			if s.NeedsThrottling() != tt.wantThrottle {
				t.Errorf("NeedsThrottling = %v, want %v", s.NeedsThrottling(), tt.wantThrottle)
			}
			if s.NeedsCriticalBlock() != tt.wantBlock {
				t.Errorf("NeedsCriticalBlock = %v, want %v", s.NeedsCriticalBlock(), tt.wantBlock)
			}
		})
	}
}

func TestState_Remaining(t *testing.T) {
	s := &State{Used: 12000, Limit: 10000}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", s.Remaining())
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	past := &State{ResetAt: time.Now().Add(-time.Minute)}
	if past.TimeUntilReset() != 0 {
		t.Errorf("TimeUntilReset for past reset = %v, want 0", past.TimeUntilReset())
	}

	future := &State{ResetAt: time.Now().Add(time.Hour)}
	if d := future.TimeUntilReset(); d <= 59*time.Minute || d > time.Hour {
		t.Errorf("TimeUntilReset = %v, want ~1h", d)
	}
}
