package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/retree/internal/config"
	"github.com/vango-dev/retree/internal/demo"
	"github.com/vango-dev/retree/internal/errors"
	"github.com/vango-dev/retree/internal/inspect"
	"github.com/vango-dev/retree/pkg/recon"
	"github.com/vango-dev/retree/pkg/telemetry"
)

func inspectCmd() *cobra.Command {
	var (
		port     int
		host     string
		interval time.Duration
		items    int
		latency  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run the demo on a timer and serve a live inspector",
		Long: `Run the demo list screen on a timer and serve it over HTTP.

Every tick applies one random edit and declares a frame. Rows load a
badge in the background; a finished load schedules an extra frame.

Endpoints:
  /nodes    snapshot of the latest frame
  /stats    statistics of the latest frame
  /ws       websocket stream of frame statistics
  /metrics  Prometheus metrics

Examples:
  retree inspect
  retree inspect --port=9090 --interval=100ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Inspector.Port = port
			}
			if host != "" {
				cfg.Inspector.Host = host
			}
			if items > 0 {
				cfg.Workload.Items = items
			}
			if interval > 0 {
				cfg.Workload.Interval = interval.String()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runInspect(cfg, latency)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from retree.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from retree.json)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Frame interval (default from retree.json)")
	cmd.Flags().IntVarP(&items, "items", "i", 0, "Initial list size (default from retree.json)")
	cmd.Flags().DurationVar(&latency, "load-latency", 200*time.Millisecond, "Maximum simulated background load latency")

	return cmd
}

func runInspect(cfg *config.Config, latency time.Duration) error {
	tick, err := time.ParseDuration(cfg.Workload.Interval)
	if err != nil || tick <= 0 {
		return errors.New("E121").
			WithDetail(fmt.Sprintf("workload.interval %q is not a positive duration", cfg.Workload.Interval))
	}

	logger := newLogger(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := inspect.NewHub(logger)
	opts := []recon.Option{
		recon.WithLogger(logger),
		recon.WithInitialCapacity(cfg.Engine.InitialCapacity),
		recon.WithFirstFrameRelayout(cfg.Relayout()),
		recon.WithObserver(hub),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, recon.WithObserver(telemetry.NewMetrics(
			telemetry.WithRegistry(registry),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithSubsystem(cfg.Metrics.Subsystem),
		)))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, recon.WithObserver(telemetry.NewTracer(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
		)))
	}

	tree := recon.New[demo.Params](opts...)
	hub.Track(tree)

	wake := make(chan struct{}, 1)
	app := demo.New(tree, cfg.Workload.Items,
		demo.WithSeed(uint64(time.Now().UnixNano())),
		demo.WithLoader(func(item string) (string, error) {
			if latency > 0 {
				time.Sleep(rand.N(latency))
			}
			return fmt.Sprintf("%d chars", len(item)), nil
		}),
		demo.WithWake(func() {
			select {
			case wake <- struct{}{}:
			default:
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := inspect.NewServer(hub, inspect.Config{
		Gatherer: registry,
		Logger:   logger,
	})

	fmt.Println()
	success("Inspector on %s", cfg.InspectorURL())
	info("frame every %s, %d items", tick, cfg.Workload.Items)
	fmt.Println()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(ctx, cfg.InspectorAddress()); err != nil {
			return errors.New("E141").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		return runFrames(ctx, app, tick, wake)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("\n  Stopped.")
	return nil
}

// runFrames declares a frame after every edit tick and after every
// finished background load until ctx is done.
func runFrames(ctx context.Context, app *demo.App, tick time.Duration, wake <-chan struct{}) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if _, err := app.Frame(); err != nil {
		return errors.FromError(err, "E142")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			app.Mutate()
		case <-wake:
		}
		if _, err := app.Frame(); err != nil {
			return errors.FromError(err, "E142")
		}
	}
}
