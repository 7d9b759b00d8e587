package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
)

// recorder collects the order stages ran in.
type recorder struct {
	ran []string
}

func (r *recorder) stage(name string, after ...string) Stage {
	return Stage{Name: name, After: after, Run: func(context.Context, *Run) (*report.Summary, error) {
		r.ran = append(r.ran, name)
		return nil, nil
	}}
}

func newTestRunner(t *testing.T, stages ...Stage) (*Runner, *[]time.Duration) {
	t.Helper()
	r, err := NewRunner(stages...)
	require.NoError(t, err)

	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	r.newID = func() string { return "run-1" }
	return r, &waits
}

func TestNewRunner_TopologicalOrder(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestRunner(t,
		rec.stage("analyze", "preprocess"),
		rec.stage("comments", "ids"),
		rec.stage("preprocess", "details"),
		rec.stage("details", "ids"),
		rec.stage("ids"),
	)

	assert.Equal(t, []string{"ids", "comments", "details", "preprocess", "analyze"}, r.Stages())
}

func TestNewRunner_InvalidGraphs(t *testing.T) {
	rec := &recorder{}

	_, err := NewRunner(rec.stage("a"), rec.stage("a"))
	assert.Error(t, err, "duplicate")

	_, err = NewRunner(rec.stage("a", "missing"))
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, err = NewRunner(rec.stage("a", "b"), rec.stage("b", "a"))
	assert.ErrorContains(t, err, "cycle")
}

func TestRunner_RunAll(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestRunner(t, rec.stage("first"), rec.stage("second", "first"))

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, []string{"first", "second"}, rec.ran)
	assert.Nil(t, res.Failed())
}

func TestRunner_RunSelected(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestRunner(t, rec.stage("a"), rec.stage("b", "a"), rec.stage("c", "b"))

	_, err := r.Run(context.Background(), "c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, rec.ran, "selected stages run alone, in dependency order")

	_, err = r.Run(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestRunner_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	flaky := Stage{Name: "flaky", Run: func(_ context.Context, run *Run) (*report.Summary, error) {
		calls++
		assert.Equal(t, calls, run.Attempt)
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return nil, nil
	}}
	r, waits := newTestRunner(t, flaky)
	r.RetryDelay = time.Minute

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stages[0].Attempts)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, *waits)
}

func TestRunner_StopsAtExhaustedStage(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	failing := Stage{Name: "failing", Run: func(context.Context, *Run) (*report.Summary, error) {
		return nil, boom
	}}
	r, waits := newTestRunner(t, failing, rec.stage("after", "failing"))

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrStageFailed)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res.Failed())
	assert.Equal(t, "failing", res.Failed().Name)
	assert.Equal(t, DefaultRetries+1, res.Failed().Attempts)
	assert.Len(t, *waits, DefaultRetries)
	assert.Empty(t, rec.ran, "later stages do not run")
}

func TestRunner_CancelledWaitStopsRetrying(t *testing.T) {
	attempts := 0
	failing := Stage{Name: "failing", Run: func(context.Context, *Run) (*report.Summary, error) {
		attempts++
		return nil, errors.New("down")
	}}
	r, err := NewRunner(failing)
	require.NoError(t, err)
	r.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, ErrStageFailed)
	assert.Equal(t, 1, attempts)
}

func TestRunner_KeepsSummary(t *testing.T) {
	s := Stage{Name: "items", Run: func(context.Context, *Run) (*report.Summary, error) {
		sum := report.NewSummary("items")
		sum.OK("a")
		sum.Skip("b", errors.New("gone"))
		return sum, nil
	}}
	r, _ := newTestRunner(t, s)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Stages[0].Summary)
	assert.Equal(t, 1, res.Stages[0].Summary.Skipped())
}

func TestRunner_SkipsUnconfiguredBranch(t *testing.T) {
	rec := &recorder{}
	attempts := 0
	unconfigured := Stage{Name: "sentiment", After: []string{"comments"}, Run: func(context.Context, *Run) (*report.Summary, error) {
		attempts++
		return nil, ErrNotConfigured
	}}
	r, waits := newTestRunner(t,
		rec.stage("comments"),
		unconfigured,
		rec.stage("report", "sentiment"),
		rec.stage("analyze", "comments"),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *waits)
	assert.Equal(t, []string{"comments", "analyze"}, rec.ran)
	assert.Nil(t, res.Failed())

	require.Len(t, res.Stages, 4)
	byName := map[string]StageResult{}
	for _, s := range res.Stages {
		byName[s.Name] = s
	}
	assert.True(t, byName["sentiment"].Skipped)
	assert.True(t, byName["report"].Skipped)
	assert.ErrorIs(t, byName["report"].Err, ErrNotConfigured)
	assert.Zero(t, byName["report"].Attempts)
	assert.False(t, byName["analyze"].Skipped)
	assert.NoError(t, byName["analyze"].Err)
}

func TestRunner_NamedUnconfiguredStageFails(t *testing.T) {
	attempts := 0
	unconfigured := Stage{Name: "sentiment", Run: func(context.Context, *Run) (*report.Summary, error) {
		attempts++
		return nil, ErrNotConfigured
	}}
	r, waits := newTestRunner(t, unconfigured)

	res, err := r.Run(context.Background(), "sentiment")
	assert.ErrorIs(t, err, ErrStageFailed)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *waits)
	require.NotNil(t, res.Failed())
	assert.False(t, res.Failed().Skipped)
}
