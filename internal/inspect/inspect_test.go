package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/recon"
	"github.com/vango-dev/retree/pkg/telemetry"
)

type params struct {
	Text string `json:"text"`
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTrackedTree(t *testing.T, hub *Hub, opts ...recon.Option) *recon.Tree[params] {
	t.Helper()
	opts = append([]recon.Option{recon.WithLogger(discard), recon.WithObserver(hub)}, opts...)
	tree := recon.New[params](opts...)
	hub.Track(tree)
	return tree
}

func declare(t *testing.T, tree *recon.Tree[params], labels ...string) {
	t.Helper()
	if err := tree.BeginTree(); err != nil {
		t.Fatalf("BeginTree: %v", err)
	}
	for _, l := range labels {
		tree.Add(ident.NewKey(l)).SetParams(params{Text: l})
	}
	if err := tree.FinishTree(); err != nil {
		t.Fatalf("FinishTree: %v", err)
	}
	tree.TakeChanges()
}

func TestNewReport(t *testing.T) {
	r := NewReport(recon.FrameStats{
		Frame:    3,
		Live:     5,
		Pruned:   2,
		Duration: 1500 * time.Microsecond,
		Err:      errors.New("boom"),
	})
	if r.Frame != 3 || r.Live != 5 || r.Pruned != 2 {
		t.Errorf("NewReport = %+v", r)
	}
	if r.Micros != 1500 {
		t.Errorf("Micros = %d, want 1500", r.Micros)
	}
	if r.Error != "boom" {
		t.Errorf("Error = %q, want %q", r.Error, "boom")
	}
}

func TestHubTracksTree(t *testing.T) {
	hub := NewHub(discard)
	tree := newTrackedTree(t, hub)

	declare(t, tree, "a", "b")

	report, at := hub.Latest()
	if at.IsZero() {
		t.Fatal("Latest not updated after frame")
	}
	if report.Frame != 1 {
		t.Errorf("Frame = %d, want 1", report.Frame)
	}
	if report.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", report.Inserted)
	}
	// root + a + b
	if got := len(hub.Nodes()); got != 3 {
		t.Errorf("Nodes = %d, want 3", got)
	}

	declare(t, tree, "a")
	report, _ = hub.Latest()
	if report.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", report.Pruned)
	}
	if got := len(hub.Nodes()); got != 2 {
		t.Errorf("Nodes = %d, want 2", got)
	}
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewHub(discard)
	_, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		hub.Publish(Report{Frame: uint64(i + 1)}, nil)
	}
	if got := hub.Dropped(); got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}

	cancel()
	cancel()
	if got := hub.Subscribers(); got != 0 {
		t.Errorf("Subscribers = %d, want 0", got)
	}
}

func TestServerJSONEndpoints(t *testing.T) {
	hub := NewHub(discard)
	tree := newTrackedTree(t, hub)
	declare(t, tree, "title", "body")

	srv := NewServer(hub, Config{Logger: discard, Gatherer: prometheus.NewRegistry()})
	h := srv.Handler()

	t.Run("stats", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var r Report
		if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if r.Frame != 1 || r.Live != 3 {
			t.Errorf("report = %+v, want frame 1 with 3 live", r)
		}
	})

	t.Run("nodes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/nodes", nil))
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var nodes []struct {
			ID     ident.Id `json:"id"`
			Label  string   `json:"label"`
			Params params   `json:"params"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &nodes); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(nodes) != 3 {
			t.Fatalf("nodes = %d, want 3", len(nodes))
		}
		if nodes[1].ID != ident.NewKey("title").Id() || nodes[1].Params.Text != "title" {
			t.Errorf("nodes[1] = %+v", nodes[1])
		}
	})

	t.Run("node by id", func(t *testing.T) {
		id := ident.NewKey("body").Id()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/nodes/"+id.String(), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"label":"body"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/nodes/00000000000000ff", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/nodes/zz", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(discard)
	tree := newTrackedTree(t, hub, recon.WithObserver(telemetry.NewMetrics(telemetry.WithRegistry(reg))))
	declare(t, tree, "a")

	srv := NewServer(hub, Config{Logger: discard, Gatherer: reg})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retree_live_nodes 2") {
		t.Errorf("metrics output missing live gauge:\n%s", rec.Body.String())
	}
}

func TestServerStream(t *testing.T) {
	hub := NewHub(discard)
	hub.Publish(Report{Frame: 1}, nil)

	srv := NewServer(hub, Config{Logger: discard, Gatherer: prometheus.NewRegistry()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first Report
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if first.Frame != 1 {
		t.Errorf("first report frame = %d, want 1", first.Frame)
	}

	deadline := time.Now().Add(5 * time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Publish(Report{Frame: 2, Live: 4}, nil)

	var next Report
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if next.Frame != 2 || next.Live != 4 {
		t.Errorf("next report = %+v, want frame 2 with 4 live", next)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	for hub.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := hub.Subscribers(); got != 0 {
		t.Errorf("Subscribers after close = %d, want 0", got)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(NewHub(discard), Config{Logger: discard, Gatherer: prometheus.NewRegistry()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
