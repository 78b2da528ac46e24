package inspect

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/retree/pkg/recon"
)

// Source produces node snapshots. *recon.Tree satisfies it.
type Source interface {
	Snapshot() []recon.NodeInfo
}

// Report is the JSON form of recon.FrameStats.
type Report struct {
	Frame     uint64 `json:"frame"`
	Live      int    `json:"live"`
	Inserted  int    `json:"inserted"`
	Refreshed int    `json:"refreshed"`
	Twins     int    `json:"twins"`
	Pruned    int    `json:"pruned"`
	Dirty     int    `json:"dirty"`
	Cosmetic  int    `json:"cosmetic"`
	Micros    int64  `json:"durationMicros"`
	Error     string `json:"error,omitempty"`
}

// NewReport converts frame statistics to a Report.
func NewReport(s recon.FrameStats) Report {
	r := Report{
		Frame:     s.Frame,
		Live:      s.Live,
		Inserted:  s.Inserted,
		Refreshed: s.Refreshed,
		Twins:     s.Twins,
		Pruned:    s.Pruned,
		Dirty:     s.Dirty,
		Cosmetic:  s.Cosmetic,
		Micros:    s.Duration.Microseconds(),
	}
	if s.Err != nil {
		r.Error = s.Err.Error()
	}
	return r
}

// subscriberBuffer is the number of reports queued per stream before new
// reports are dropped for that stream.
const subscriberBuffer = 16

// Hub caches the latest frame of a tree and fans reports out to streaming
// clients. It implements recon.Observer; EndFrame runs on the goroutine
// that owns the tree, everything else is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	source  Source
	report  Report
	nodes   []recon.NodeInfo
	updated time.Time

	subMu   sync.Mutex
	subs    map[chan Report]struct{}
	dropped uint64

	logger *slog.Logger
}

// NewHub creates a Hub. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[chan Report]struct{}),
		logger: logger.With("component", "inspect"),
	}
}

// Track sets the tree snapshotted after every frame.
func (h *Hub) Track(src Source) {
	h.mu.Lock()
	h.source = src
	h.mu.Unlock()
}

// BeginFrame implements recon.Observer.
func (h *Hub) BeginFrame(uint64) {}

// EndFrame implements recon.Observer.
func (h *Hub) EndFrame(s recon.FrameStats) {
	h.mu.RLock()
	src := h.source
	h.mu.RUnlock()

	var nodes []recon.NodeInfo
	if src != nil {
		nodes = src.Snapshot()
	}
	h.Publish(NewReport(s), nodes)
}

// Publish stores a frame and forwards its report to every subscriber.
// Subscribers that are not keeping up lose the report.
func (h *Hub) Publish(r Report, nodes []recon.NodeInfo) {
	h.mu.Lock()
	h.report = r
	h.nodes = nodes
	h.updated = time.Now()
	h.mu.Unlock()

	h.subMu.Lock()
	defer h.subMu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- r:
		default:
			h.dropped++
			h.logger.Debug("inspect: stream behind, report dropped", "frame", r.Frame)
		}
	}
}

// Latest returns the last published report and when it was published.
func (h *Hub) Latest() (Report, time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report, h.updated
}

// Nodes returns the snapshot of the last published frame.
func (h *Hub) Nodes() []recon.NodeInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nodes
}

// Subscribe registers a stream. The returned cancel func must be called
// once the stream is done.
func (h *Hub) Subscribe() (<-chan Report, func()) {
	ch := make(chan Report, subscriberBuffer)
	h.subMu.Lock()
	h.subs[ch] = struct{}{}
	h.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.subMu.Lock()
			delete(h.subs, ch)
			h.subMu.Unlock()
		})
	}
}

// Subscribers returns the number of open streams.
func (h *Hub) Subscribers() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subs)
}

// Dropped returns how many reports were dropped for slow streams.
func (h *Hub) Dropped() uint64 {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return h.dropped
}
