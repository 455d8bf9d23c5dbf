package pipeline

import (
	"math"
	"testing"
	"time"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConversionStatsSnapshotPercentiles(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, ms == 500)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Failed != 1 {
		t.Fatalf("expected failed=1, got %d", snap.Failed)
	}
	if !near(snap.MinMs, 100) || !near(snap.MaxMs, 500) {
		t.Fatalf("expected min=100 max=500, got min=%f max=%f", snap.MinMs, snap.MaxMs)
	}
	if !near(snap.AvgMs, 300) {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if !near(snap.P50Ms, 300) {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if !near(snap.P95Ms, 480) {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if !near(snap.P99Ms, 496) {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.Window != "1h0m0s" {
		t.Fatalf("expected window 1h0m0s, got %q", snap.Window)
	}
}

func TestConversionStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewConversionStats(10 * time.Millisecond)
	stats.Record(100*time.Millisecond, false)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, false)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if !near(snap.MinMs, 200) || !near(snap.MaxMs, 200) {
		t.Fatalf("expected min=max=200, got min=%f max=%f", snap.MinMs, snap.MaxMs)
	}
}

func TestConversionStatsClampsNegativeDuration(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	stats.Record(-10*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%f max=%f", snap.MinMs, snap.MaxMs)
	}
}
