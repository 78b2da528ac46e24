package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/retree/internal/config"
	"github.com/vango-dev/retree/internal/errors"
)

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{0.5, 5},
		{0.95, 10},
		{0.1, 1},
		{1, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestRunBench(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "retree.json")
	if err := os.WriteFile(cfgFile, []byte(`{"workload": {"items": 12}}`), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = cfgFile
	defer func() { configPath = "" }()

	out := filepath.Join(dir, "report.json")
	var buf bytes.Buffer
	err := runBench(&buf, benchConfig{Frames: 40, Seed: 7, Edits: 2, JSON: out})
	if err != nil {
		t.Fatalf("runBench: %v", err)
	}
	if !strings.Contains(buf.String(), "=== retree bench ===") {
		t.Errorf("summary missing header:\n%s", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var report benchReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Workload.Items != 12 {
		t.Errorf("Items = %d, want 12 from config", report.Workload.Items)
	}
	if report.Workload.Frames != 40 {
		t.Errorf("Frames = %d, want 40", report.Workload.Frames)
	}
	if report.Totals.Inserted == 0 || report.Totals.FinalLive == 0 {
		t.Errorf("Totals = %+v, want inserts and live nodes", report.Totals)
	}
	if report.LatencyUS.Max < report.LatencyUS.P50 {
		t.Errorf("latency max %v < p50 %v", report.LatencyUS.Max, report.LatencyUS.P50)
	}
}

func TestRunBenchRejectsBadFlags(t *testing.T) {
	tests := []benchConfig{
		{Frames: 0},
		{Frames: 10, Edits: -1},
	}
	for _, bc := range tests {
		err := runBench(&bytes.Buffer{}, bc)
		var d *errors.Diagnostic
		if !stderrors.As(err, &d) || d.Code != "E140" {
			t.Errorf("runBench(%+v) = %v, want E140", bc, err)
		}
	}
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	if err := runInit(dir, false); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	err := runInit(dir, false)
	var d *errors.Diagnostic
	if !stderrors.As(err, &d) || d.Code != "E124" {
		t.Errorf("second runInit = %v, want E124", err)
	}
	if err := runInit(dir, true); err != nil {
		t.Errorf("runInit with force: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Inspector.Port != config.DefaultPort {
		t.Errorf("Inspector.Port = %d, want %d", cfg.Inspector.Port, config.DefaultPort)
	}
}
