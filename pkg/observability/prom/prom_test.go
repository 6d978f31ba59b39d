package prom

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/repertoire/pkg/observability"
)

func TestBuildMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnBuildComplete(ctx, "w", 10, 12, time.Millisecond, nil)
	m.OnBuildComplete(ctx, "w", 0, 0, time.Millisecond, errors.New("boom"))
	m.OnLineSkipped(ctx, "w", "ILLEGAL_MOVE")
	m.OnLineSkipped(ctx, "w", "")
	m.OnInferComplete(ctx, "w", 3, 2, time.Millisecond)

	if got := testutil.ToFloat64(m.builds.WithLabelValues("w", "ok")); got != 1 {
		t.Errorf("ok builds = %v", got)
	}
	if got := testutil.ToFloat64(m.builds.WithLabelValues("w", "error")); got != 1 {
		t.Errorf("failed builds = %v", got)
	}
	if got := testutil.ToFloat64(m.graphNodes.WithLabelValues("w")); got != 10 {
		t.Errorf("graph_nodes = %v, failed build must not reset it", got)
	}
	if got := testutil.ToFloat64(m.linesSkipped.WithLabelValues("w", "unknown")); got != 1 {
		t.Errorf("skipped unknown = %v", got)
	}
	if got := testutil.ToFloat64(m.inferredEdges.WithLabelValues("w")); got != 3 {
		t.Errorf("inferred = %v", got)
	}
}

func TestPracticeAndCacheMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRoundComplete(ctx, "b", "success", 6)
	m.OnRoundComplete(ctx, "b", "failed", 3)
	m.OnRoundComplete(ctx, "b", "success", 8)
	m.OnCacheHit(ctx, "lichess")
	m.OnCacheMiss(ctx, "lichess")
	m.OnCacheMiss(ctx, "lichess")
	m.OnCacheSet(ctx, "lichess", 512)

	if got := testutil.ToFloat64(m.rounds.WithLabelValues("b", "success")); got != 2 {
		t.Errorf("successful rounds = %v", got)
	}
	if got := testutil.CollectAndCount(m.roundLength); got != 1 {
		t.Errorf("round length series = %d", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses.WithLabelValues("lichess")); got != 2 {
		t.Errorf("misses = %v", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("lichess")); got != 512 {
		t.Errorf("bytes = %v", got)
	}
}

func TestHTTPMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "explorer.lichess.ovh", "/lichess")
	m.OnResponse(ctx, "GET", "explorer.lichess.ovh", "/lichess", 200, 50*time.Millisecond)
	m.OnResponse(ctx, "GET", "explorer.lichess.ovh", "/lichess", 429, 5*time.Millisecond)
	m.OnError(ctx, "GET", "explorer.lichess.ovh", "/lichess", errors.New("reset"))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "explorer.lichess.ovh", "429")); got != 1 {
		t.Errorf("429 responses = %v", got)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("GET", "explorer.lichess.ovh")); got != 1 {
		t.Errorf("errors = %v", got)
	}
}

func TestInstall(t *testing.T) {
	t.Cleanup(observability.Reset)

	m := New(prometheus.NewRegistry())
	m.Install()

	observability.Practice().OnRoundComplete(context.Background(), "w", "success", 4)
	if got := testutil.ToFloat64(m.rounds.WithLabelValues("w", "success")); got != 1 {
		t.Errorf("rounds after Install = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.OnCacheHit(context.Background(), "lichess")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `repertoire_cache_hits_total{type="lichess"} 1`) {
		t.Errorf("metrics output missing cache hits:\n%s", body)
	}
}
