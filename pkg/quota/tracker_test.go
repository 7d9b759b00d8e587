package quota

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker(store Store, cfg Config) *Tracker {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tr := NewTracker(store, cfg, logger)
	tr.now = func() time.Time { return time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC) }
	return tr
}

func TestNewTracker_Defaults(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), Config{CriticalReserve: -1}, zerolog.Nop())
	if tr.config.DailyLimit != DefaultDailyLimit {
		t.Errorf("DailyLimit = %d, want %d", tr.config.DailyLimit, DefaultDailyLimit)
	}
	if tr.config.CriticalReserve != DefaultCriticalReserve {
		t.Errorf("CriticalReserve = %d, want %d", tr.config.CriticalReserve, DefaultCriticalReserve)
	}
	if tr.config.WarningReserve < tr.config.CriticalReserve {
		t.Error("WarningReserve should never be below CriticalReserve")
	}
}

func TestTracker_RecordAndState(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(NewMemoryStore(), DefaultConfig())

	for i := 0; i < 3; i++ {
		if err := tr.Record(ctx, CostList); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	state, err := tr.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Day != "2024-03-05" {
		t.Errorf("Day = %s, want 2024-03-05", state.Day)
	}
	if state.Used != 3 {
		t.Errorf("Used = %d, want 3", state.Used)
	}
	if !state.IsHealthy {
		t.Error("State should be healthy")
	}
}

func TestTracker_ShouldAllowRequest(t *testing.T) {
	ctx := context.Background()
	cfg := Config{DailyLimit: 100, CriticalReserve: 5, WarningReserve: 20, ThrottleDelay: time.Millisecond}

	tests := []struct {
		name  string
		used  int
		allow bool
	}{
		{"healthy", 10, true},
		{"throttled but allowed", 85, true},
		{"blocked", 96, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			tr := newTestTracker(store, cfg)
			day, _ := Day(tr.now())
			if err := store.Set(ctx, day, tt.used); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			allowed, err := tr.ShouldAllowRequest(ctx)
			if err != nil {
				t.Fatalf("ShouldAllowRequest failed: %v", err)
			}
			if allowed != tt.allow {
				t.Errorf("allowed = %v, want %v", allowed, tt.allow)
			}
		})
	}
}

func TestTracker_ThrottleHonoursContext(t *testing.T) {
	cfg := Config{DailyLimit: 100, CriticalReserve: 5, WarningReserve: 20, ThrottleDelay: time.Hour}
	store := NewMemoryStore()
	tr := newTestTracker(store, cfg)
	day, _ := Day(tr.now())
	_ = store.Set(context.Background(), day, 90)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	allowed, err := tr.ShouldAllowRequest(ctx)
	if allowed || err == nil {
		t.Errorf("expected cancellation, got allowed=%v err=%v", allowed, err)
	}
}

func TestTracker_MarkExhausted(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(NewMemoryStore(), DefaultConfig())

	if err := tr.MarkExhausted(ctx); err != nil {
		t.Fatalf("MarkExhausted failed: %v", err)
	}

	allowed, err := tr.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if allowed {
		t.Error("requests should be blocked after quota exhaustion")
	}
}
