package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/recon"
)

// Config holds inspector server settings.
type Config struct {
	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger receives server logs. Default: slog.Default().
	Logger *slog.Logger

	// CheckOrigin validates websocket origins. Default: same-origin only.
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout is the maximum time to wait when streaming a report.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between websocket pings.
	// Default: 30 seconds.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 5 seconds.
	ShutdownTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Server serves a Hub over HTTP.
//
//	GET /healthz      liveness
//	GET /stats        latest frame report
//	GET /nodes        snapshot of the latest frame
//	GET /nodes/{id}   one node by hex id
//	GET /metrics      Prometheus exposition
//	GET /ws           websocket stream of frame reports
type Server struct {
	hub      *Hub
	config   Config
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates an inspector for hub.
func NewServer(hub *Hub, config Config) *Server {
	config.applyDefaults()
	s := &Server{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: config.Logger.With("component", "inspect"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/stats", s.handleStats)
	r.Get("/nodes", s.handleNodes)
	r.Get("/nodes/{id}", s.handleNode)
	r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleStream)
	s.router = r

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("inspector stopped")
		return nil
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, _ := s.hub.Latest()
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.hub.Nodes()
	if nodes == nil {
		nodes = []recon.NodeInfo{}
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := ident.ParseId(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, n := range s.hub.Nodes() {
		if n.ID == id {
			s.writeJSON(w, http.StatusOK, n)
			return
		}
	}
	http.Error(w, "node not found", http.StatusNotFound)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode error", "error", err)
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// handleStream upgrades to a websocket and writes one JSON report per
// frame. The current report is sent first.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	reports, cancel := s.hub.Subscribe()
	defer cancel()

	// The read loop only exists to observe the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.logger.Debug("stream read error", "error", err)
				}
				return
			}
		}
	}()

	if latest, at := s.hub.Latest(); !at.IsZero() {
		if err := s.send(conn, latest); err != nil {
			return
		}
	}

	ping := time.NewTicker(s.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case report := <-reports:
			if err := s.send(conn, report); err != nil {
				s.logger.Debug("stream write error", "error", err)
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}

		case <-closed:
			return

		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, report Report) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(report)
}
