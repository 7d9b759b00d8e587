package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	ytQuotaUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yt_quota_used_units",
		Help: "Data API quota units spent in the current quota day",
	})

	ytQuotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_quota_blocks_total",
		Help: "Total number of requests blocked because the quota reserve was reached",
	})

	ytQuotaThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_quota_throttles_total",
		Help: "Total number of requests delayed because quota was running low",
	})
)

// Config holds quota thresholds.
type Config struct {
	DailyLimit      int
	CriticalReserve int
	WarningReserve  int
	ThrottleDelay   time.Duration
}

// DefaultConfig returns thresholds for the standard daily allocation.
func DefaultConfig() Config {
	return Config{
		DailyLimit:      DefaultDailyLimit,
		CriticalReserve: DefaultCriticalReserve,
		WarningReserve:  DefaultWarningReserve,
		ThrottleDelay:   time.Second,
	}
}

// Tracker gates requests on the daily quota ledger.
type Tracker struct {
	store  Store
	config Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a quota tracker over store.
func NewTracker(store Store, cfg Config, logger zerolog.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = def.DailyLimit
	}
	if cfg.CriticalReserve < 0 {
		cfg.CriticalReserve = def.CriticalReserve
	}
	if cfg.WarningReserve < cfg.CriticalReserve {
		cfg.WarningReserve = cfg.CriticalReserve
	}

	return &Tracker{
		store:  store,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns today's ledger.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	day, resetAt := Day(t.now())

	used, err := t.store.Used(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("get quota state: %w", err)
	}

	state := &State{
		Day:      day,
		Used:     used,
		Limit:    t.config.DailyLimit,
		ResetAt:  resetAt,
		critical: t.config.CriticalReserve,
		warning:  t.config.WarningReserve,
	}
	state.UpdateHealth()

	return state, nil
}

// ShouldAllowRequest reports whether a request of cost units may be sent.
// It returns false once the critical reserve is reached and sleeps for the
// throttle delay when quota is running low.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("remaining", state.Remaining()).
			Dur("reset_in", state.TimeUntilReset()).
			Msg("Quota reserve reached - blocking request")
		ytQuotaBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("remaining", state.Remaining()).
			Msg("Quota running low - throttling request")
		ytQuotaThrottlesTotal.Inc()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(t.config.ThrottleDelay):
		}
	}

	return true, nil
}

// Record adds units spent by a request that reached the API.
func (t *Tracker) Record(ctx context.Context, units int) error {
	day, _ := Day(t.now())

	used, err := t.store.Add(ctx, day, units)
	if err != nil {
		return err
	}
	ytQuotaUsed.Set(float64(used))

	t.logger.Debug().
		Str("day", day).
		Int("used", used).
		Int("limit", t.config.DailyLimit).
		Msg("Quota ledger updated")
	return nil
}

// MarkExhausted sets today's ledger to the full limit after the API reported
// quotaExceeded, so later requests are blocked locally until the reset.
func (t *Tracker) MarkExhausted(ctx context.Context) error {
	day, resetAt := Day(t.now())

	if err := t.store.Set(ctx, day, t.config.DailyLimit); err != nil {
		return err
	}
	ytQuotaUsed.Set(float64(t.config.DailyLimit))

	t.logger.Error().
		Str("day", day).
		Time("reset_at", resetAt).
		Msg("API reported quota exceeded")
	return nil
}
