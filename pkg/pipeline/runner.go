// Package pipeline runs the collection stages in dependency order with
// stage-level retries. Stages exchange data through fixed CSV files in the
// data directory, so each one can also be invoked on its own by an external
// scheduler.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/metrics"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
)

var (
	// ErrUnknownStage is returned for a stage name the runner does not know.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrStageFailed wraps the error of the stage that stopped a run.
	ErrStageFailed = errors.New("stage failed")

	// ErrNotConfigured is returned by a stage whose provider is not
	// configured. It is never retried. A full run skips such a stage and the
	// stages that depend on it.
	ErrNotConfigured = errors.New("stage dependency not configured")
)

// Default task-level retry policy.
const (
	DefaultRetries    = 3
	DefaultRetryDelay = 5 * time.Minute
)

// StageFunc does the work of one stage. The summary is optional and carries
// per-item outcomes.
type StageFunc func(ctx context.Context, run *Run) (*report.Summary, error)

// Stage is a named unit of work with the stages it depends on.
type Stage struct {
	Name  string
	After []string
	Run   StageFunc
}

// Run is the context handed to a stage attempt.
type Run struct {
	ID      string
	Stage   string
	Attempt int
	Logger  zerolog.Logger
}

// StageResult reports one stage of a run.
type StageResult struct {
	Name     string
	Attempts int
	Duration time.Duration
	Summary  *report.Summary
	Err      error
	// Skipped is set when the stage or one of its dependencies is not
	// configured. Err then holds the reason.
	Skipped bool
}

// Result reports a whole run.
type Result struct {
	RunID  string
	Stages []StageResult
}

// Failed returns the first failed stage, or nil. Skipped stages do not count.
func (r *Result) Failed() *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Err != nil && !r.Stages[i].Skipped {
			return &r.Stages[i]
		}
	}
	return nil
}

// Runner executes stages.
type Runner struct {
	stages     map[string]Stage
	order      []string
	Retries    int
	RetryDelay time.Duration

	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	newID  func() string
}

// NewRunner creates a runner over stages. It fails when a stage name is
// duplicated, a dependency is unknown or the dependencies form a cycle.
func NewRunner(stages ...Stage) (*Runner, error) {
	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate stage %q", s.Name)
		}
		byName[s.Name] = s
	}

	order, err := topoSort(stages, byName)
	if err != nil {
		return nil, err
	}

	return &Runner{
		stages:     byName,
		order:      order,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		logger:     logging.NewLogger("pipeline"),
		sleep:      sleepCtx,
		newID:      uuid.NewString,
	}, nil
}

// topoSort orders stages so every stage follows its dependencies. Among
// ready stages, declaration order wins.
func topoSort(stages []Stage, byName map[string]Stage) ([]string, error) {
	pending := make(map[string]int, len(stages))
	for _, s := range stages {
		for _, dep := range s.After {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("stage %q depends on %w %q", s.Name, ErrUnknownStage, dep)
			}
		}
		pending[s.Name] = len(s.After)
	}

	done := make(map[string]bool, len(stages))
	order := make([]string, 0, len(stages))
	for len(order) < len(stages) {
		progressed := false
		for _, s := range stages {
			if done[s.Name] || !ready(s, done) {
				continue
			}
			done[s.Name] = true
			order = append(order, s.Name)
			progressed = true
		}
		if !progressed {
			return nil, errors.New("stage dependencies form a cycle")
		}
	}
	return order, nil
}

func ready(s Stage, done map[string]bool) bool {
	for _, dep := range s.After {
		if !done[dep] {
			return false
		}
	}
	return true
}

// Stages returns stage names in execution order.
func (r *Runner) Stages() []string {
	return append([]string(nil), r.order...)
}

// Stage returns the named stage.
func (r *Runner) Stage(name string) (Stage, bool) {
	s, ok := r.stages[name]
	return s, ok
}

// Run executes the named stages, or all stages when none are named, in
// dependency order. Named stages run on their own; their inputs must already
// be on disk. The run stops at the first stage that exhausts its retries.
//
// On a full run a stage failing with ErrNotConfigured is marked skipped, as
// is every stage depending on it, and the remaining stages still run.
func (r *Runner) Run(ctx context.Context, names ...string) (*Result, error) {
	selected, err := r.selection(names)
	if err != nil {
		return nil, err
	}
	full := len(names) == 0

	res := &Result{RunID: r.newID()}
	logger := r.logger.With().Str(logging.FieldRunID, res.RunID).Logger()
	logger.Info().Strs("stages", selected).Msg("Pipeline run started")

	skipped := make(map[string]bool)
	for _, name := range selected {
		if full {
			if dep := r.skippedDependency(name, skipped); dep != "" {
				skipped[name] = true
				res.Stages = append(res.Stages, StageResult{
					Name:    name,
					Err:     fmt.Errorf("%w: depends on skipped stage %s", ErrNotConfigured, dep),
					Skipped: true,
				})
				logger.Warn().Str(logging.FieldStage, name).Str("after", dep).Msg("Stage skipped")
				continue
			}
		}

		sr := r.runStage(ctx, res.RunID, r.stages[name])
		if full && errors.Is(sr.Err, ErrNotConfigured) {
			sr.Skipped = true
			skipped[name] = true
			res.Stages = append(res.Stages, sr)
			logger.Warn().Err(sr.Err).Str(logging.FieldStage, name).Msg("Stage skipped")
			continue
		}
		res.Stages = append(res.Stages, sr)
		if sr.Err != nil {
			logger.Error().Err(sr.Err).Str(logging.FieldStage, name).Int("attempts", sr.Attempts).Msg("Pipeline run aborted")
			return res, fmt.Errorf("%w: %s: %w", ErrStageFailed, name, sr.Err)
		}
	}

	logger.Info().Int("stages", len(res.Stages)).Msg("Pipeline run finished")
	return res, nil
}

func (r *Runner) skippedDependency(name string, skipped map[string]bool) string {
	for _, dep := range r.stages[name].After {
		if skipped[dep] {
			return dep
		}
	}
	return ""
}

func (r *Runner) selection(names []string) ([]string, error) {
	if len(names) == 0 {
		return r.Stages(), nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.stages[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, n)
		}
		want[n] = true
	}

	var out []string
	for _, n := range r.order {
		if want[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *Runner) runStage(ctx context.Context, runID string, s Stage) StageResult {
	logger := logging.ForStage(r.logger, runID, s.Name)
	result := StageResult{Name: s.Name}
	start := time.Now()

	maxAttempts := r.Retries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt
		run := &Run{ID: runID, Stage: s.Name, Attempt: attempt, Logger: logger}

		logger.Info().Int("attempt", attempt).Msg("Stage started")
		began := time.Now()
		summary, err := s.Run(ctx, run)
		metrics.ObserveStage(s.Name, time.Since(began), err)

		if err == nil {
			result.Summary = summary
			result.Duration = time.Since(start)
			metrics.ObserveSummary(s.Name, summary)

			ev := logger.Info().Dur("duration", result.Duration)
			if summary != nil {
				ev = ev.Str("summary", summary.String())
			}
			ev.Msg("Stage finished")
			return result
		}

		result.Err = err
		if attempt == maxAttempts || ctx.Err() != nil || errors.Is(err, ErrNotConfigured) {
			break
		}

		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", r.RetryDelay).Msg("Stage failed, retrying")
		if serr := r.sleep(ctx, r.RetryDelay); serr != nil {
			result.Err = fmt.Errorf("%w (retry wait: %v)", err, serr)
			break
		}
	}

	result.Duration = time.Since(start)
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
