package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/recon"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMetricsEndFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.EndFrame(recon.FrameStats{
		Frame:    1,
		Live:     10,
		Inserted: 9,
		Twins:    2,
		Dirty:    3,
		Duration: time.Millisecond,
	})
	m.EndFrame(recon.FrameStats{
		Frame:    2,
		Live:     7,
		Pruned:   3,
		Cosmetic: 1,
		Err:      errors.New("misuse"),
	})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"frames ok", m.frames.WithLabelValues("ok"), 1},
		{"frames misuse", m.frames.WithLabelValues("misuse"), 1},
		{"live", m.live, 7},
		{"inserted", m.inserted, 9},
		{"twins", m.twins, 2},
		{"pruned", m.pruned, 3},
		{"dirty", m.dirty, 3},
		{"cosmetic", m.cosmetic, 1},
	}
	for _, tt := range checks {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("duration histogram series = %d, want 1", n)
	}
}

func TestMetricsAsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"tree": "main"}))
	tree := recon.New[struct{}](
		recon.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		recon.WithObserver(m),
	)

	row := ident.NewKey("row")
	for _, n := range []int{3, 1} {
		if err := tree.BeginTree(); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < n; i++ {
			tree.Add(row)
		}
		if err := tree.FinishTree(); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(m.frames.WithLabelValues("ok")); got != 2 {
		t.Errorf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inserted); got != 3 {
		t.Errorf("inserted = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.twins); got != 2 {
		t.Errorf("twins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pruned); got != 2 {
		t.Errorf("pruned = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.live); got != 2 {
		t.Errorf("live = %v, want 2 (root and one row)", got)
	}
}

type parentKey struct{}

func TestTracerFrameLifecycle(t *testing.T) {
	parent := context.WithValue(context.Background(), parentKey{}, "p")
	tr := NewTracer(
		WithTracerProvider(noop.NewTracerProvider()),
		WithParent(parent),
		WithAttributes(attribute.String("tree", "main")),
	)

	if tr.Context() != parent {
		t.Fatal("Context before the first frame should be the parent")
	}

	tr.BeginFrame(1)
	if tr.span == nil {
		t.Fatal("BeginFrame did not start a span")
	}
	if tr.Context().Value(parentKey{}) != "p" {
		t.Error("frame context does not derive from the parent")
	}

	tr.EndFrame(recon.FrameStats{Frame: 1, Err: errors.New("bad")})
	if tr.span != nil {
		t.Error("EndFrame left the span open")
	}
	if tr.Context() != parent {
		t.Error("Context after EndFrame should be the parent")
	}

	// EndFrame without a span is a no-op.
	tr.EndFrame(recon.FrameStats{Frame: 2})
}

func TestTracerDefaults(t *testing.T) {
	tr := NewTracer()
	if tr.config.TracerName != defaultTracerName {
		t.Errorf("TracerName = %q, want %q", tr.config.TracerName, defaultTracerName)
	}
	tr.BeginFrame(1)
	tr.EndFrame(recon.FrameStats{Frame: 1})
}
