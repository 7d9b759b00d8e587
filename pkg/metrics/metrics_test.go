package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
)

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestObserveStage(t *testing.T) {
	before := testutil.ToFloat64(StageRuns.WithLabelValues("video-ids", "failed"))

	ObserveStage("video-ids", time.Second, errors.New("boom"))
	ObserveStage("video-ids", time.Second, nil)

	if got := testutil.ToFloat64(StageRuns.WithLabelValues("video-ids", "failed")); got != before+1 {
		t.Errorf("failed runs = %v, want %v", got, before+1)
	}
}

func TestObserveSummary(t *testing.T) {
	s := report.NewSummary("comments")
	s.OK("a")
	s.OK("b")
	s.Skip("c", errors.New("disabled"))

	before := testutil.ToFloat64(StageItems.WithLabelValues("comments", "skipped"))
	ObserveSummary("comments", s)
	ObserveSummary("comments", nil)

	if got := testutil.ToFloat64(StageItems.WithLabelValues("comments", "skipped")); got != before+1 {
		t.Errorf("skipped items = %v, want %v", got, before+1)
	}
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "yt_test_pushed_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	if err := Push(context.Background(), server.URL, "run-1", reg); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if gotPath != "/metrics/job/"+Job+"/run_id/run-1" {
		t.Errorf("path = %s", gotPath)
	}
	if !strings.Contains(gotBody, "yt_test_pushed_total") {
		t.Error("pushed body should contain the registered metric")
	}
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	if err := Push(context.Background(), server.URL, "run-1", prometheus.NewRegistry()); err == nil {
		t.Error("expected error from failing gateway")
	}
}
