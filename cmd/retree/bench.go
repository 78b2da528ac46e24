package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/retree/internal/demo"
	"github.com/vango-dev/retree/internal/errors"
	"github.com/vango-dev/retree/pkg/recon"
)

type benchConfig struct {
	Frames int
	Items  int
	Seed   uint64
	Edits  int
	JSON   string
}

func benchCmd() *cobra.Command {
	var cfg benchConfig

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the demo workload and print frame timings",
		Long: `Run the demo list screen for a fixed number of frames.

Before each frame a number of random edits is applied (swap, insert,
remove, duplicate, rename, title, toolbar). The summary reports frame
latency percentiles and the totals of every change kind.

Examples:
  retree bench
  retree bench --frames=10000 --items=500
  retree bench --json=-`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().IntVarP(&cfg.Frames, "frames", "n", 1000, "Number of frames")
	cmd.Flags().IntVarP(&cfg.Items, "items", "i", 0, "Initial list size (default from retree.json)")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "Seed for the edit generator")
	cmd.Flags().IntVar(&cfg.Edits, "edits", 1, "Random edits applied before each frame")
	cmd.Flags().StringVar(&cfg.JSON, "json", "", "Write a JSON report to this path (- for stdout)")

	return cmd
}

// collector is a recon.Observer that keeps every frame's statistics.
type collector struct {
	frames []recon.FrameStats
}

func (c *collector) BeginFrame(uint64) {}

func (c *collector) EndFrame(s recon.FrameStats) {
	c.frames = append(c.frames, s)
}

func runBench(w io.Writer, bc benchConfig) error {
	if bc.Frames <= 0 {
		return errors.New("E140").WithDetail(fmt.Sprintf("--frames must be positive, got %d", bc.Frames))
	}
	if bc.Edits < 0 {
		return errors.New("E140").WithDetail(fmt.Sprintf("--edits must not be negative, got %d", bc.Edits))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if bc.Items == 0 {
		bc.Items = cfg.Workload.Items
	}

	stats := &collector{frames: make([]recon.FrameStats, 0, bc.Frames)}
	tree := recon.New[demo.Params](
		recon.WithLogger(newLogger(cfg)),
		recon.WithInitialCapacity(cfg.Engine.InitialCapacity),
		recon.WithFirstFrameRelayout(cfg.Relayout()),
		recon.WithObserver(stats),
	)
	app := demo.New(tree, bc.Items, demo.WithSeed(bc.Seed))

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	for i := 0; i < bc.Frames; i++ {
		if i > 0 {
			for j := 0; j < bc.Edits; j++ {
				app.Mutate()
			}
		}
		if _, err := app.Frame(); err != nil {
			return errors.FromError(err, "E142")
		}
	}

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	report := buildReport(bc, stats.frames, elapsed, before, after)
	writeSummary(w, report)
	if bc.JSON != "" {
		if err := writeJSON(w, bc.JSON, report); err != nil {
			return err
		}
	}
	return nil
}

type benchReport struct {
	Version   string      `json:"version"`
	Workload  workload    `json:"workload"`
	LatencyUS latencyInfo `json:"latency_us"`
	Totals    totals      `json:"totals"`
	AllocMB   float64     `json:"alloc_mb"`
	NumGC     uint32      `json:"num_gc"`
}

type workload struct {
	Frames int    `json:"frames"`
	Items  int    `json:"items"`
	Edits  int    `json:"edits_per_frame"`
	Seed   uint64 `json:"seed"`
}

type latencyInfo struct {
	Min  float64 `json:"min"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type totals struct {
	Inserted  int   `json:"inserted"`
	Refreshed int   `json:"refreshed"`
	Twins     int   `json:"twins"`
	Pruned    int   `json:"pruned"`
	Dirty     int   `json:"dirty"`
	Cosmetic  int   `json:"cosmetic"`
	FinalLive int   `json:"final_live"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

func buildReport(bc benchConfig, frames []recon.FrameStats, elapsed time.Duration, before, after runtime.MemStats) benchReport {
	durations := make([]time.Duration, len(frames))
	var t totals
	for i, s := range frames {
		durations[i] = s.Duration
		t.Inserted += s.Inserted
		t.Refreshed += s.Refreshed
		t.Twins += s.Twins
		t.Pruned += s.Pruned
		t.Dirty += s.Dirty
		t.Cosmetic += s.Cosmetic
	}
	if n := len(frames); n > 0 {
		t.FinalLive = frames[n-1].Live
	}
	t.ElapsedMS = elapsed.Milliseconds()
	slices.Sort(durations)

	var mean float64
	if len(durations) > 0 {
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		mean = us(sum / time.Duration(len(durations)))
	}

	return benchReport{
		Version: version,
		Workload: workload{
			Frames: bc.Frames,
			Items:  bc.Items,
			Edits:  bc.Edits,
			Seed:   bc.Seed,
		},
		LatencyUS: latencyInfo{
			Min:  us(percentile(durations, 0)),
			P50:  us(percentile(durations, 0.50)),
			P95:  us(percentile(durations, 0.95)),
			P99:  us(percentile(durations, 0.99)),
			Max:  us(percentile(durations, 1)),
			Mean: mean,
		},
		Totals:  t,
		AllocMB: float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
		NumGC:   after.NumGC - before.NumGC,
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func writeSummary(w io.Writer, r benchReport) {
	fmt.Fprintln(w, "=== retree bench ===")
	fmt.Fprintf(w, "Frames: %d\n", r.Workload.Frames)
	fmt.Fprintf(w, "Initial items: %d\n", r.Workload.Items)
	fmt.Fprintf(w, "Edits per frame: %d\n", r.Workload.Edits)
	fmt.Fprintf(w, "Elapsed: %s\n", time.Duration(r.Totals.ElapsedMS)*time.Millisecond)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Frame latency (BeginTree -> FinishTree):")
	fmt.Fprintf(w, "  min:  %.1f µs\n", r.LatencyUS.Min)
	fmt.Fprintf(w, "  p50:  %.1f µs\n", r.LatencyUS.P50)
	fmt.Fprintf(w, "  p95:  %.1f µs\n", r.LatencyUS.P95)
	fmt.Fprintf(w, "  p99:  %.1f µs\n", r.LatencyUS.P99)
	fmt.Fprintf(w, "  max:  %.1f µs\n", r.LatencyUS.Max)
	fmt.Fprintf(w, "  mean: %.1f µs\n", r.LatencyUS.Mean)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Totals:")
	fmt.Fprintf(w, "  inserted:  %d\n", r.Totals.Inserted)
	fmt.Fprintf(w, "  refreshed: %d\n", r.Totals.Refreshed)
	fmt.Fprintf(w, "  twins:     %d\n", r.Totals.Twins)
	fmt.Fprintf(w, "  pruned:    %d\n", r.Totals.Pruned)
	fmt.Fprintf(w, "  dirty:     %d\n", r.Totals.Dirty)
	fmt.Fprintf(w, "  cosmetic:  %d\n", r.Totals.Cosmetic)
	fmt.Fprintf(w, "  live:      %d\n", r.Totals.FinalLive)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Allocated: %.2f MB over %d GCs\n", r.AllocMB, r.NumGC)
}

func writeJSON(stdout io.Writer, path string, r benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
