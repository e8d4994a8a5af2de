package stats

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestWindow(maxAge time.Duration) (*Window, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	w := NewWindow(maxAge)
	w.now = clock.now
	return w, clock
}

func TestWindowSnapshotPercentiles(t *testing.T) {
	w, _ := newTestWindow(time.Hour)
	for _, us := range []int64{500, 100, 400, 200, 300} {
		w.Record(time.Duration(us) * time.Microsecond)
	}

	snap := w.Snapshot()
	want := Snapshot{Count: 5, MinUs: 100, MaxUs: 500, AvgUs: 300, P50Us: 300, P95Us: 480, P99Us: 496}
	if snap != want {
		t.Fatalf("expected %+v, got %+v", want, snap)
	}
}

func TestWindowPrunesExpiredSamples(t *testing.T) {
	w, clock := newTestWindow(10 * time.Second)
	w.Record(100 * time.Microsecond)
	clock.t = clock.t.Add(5 * time.Second)
	w.Record(200 * time.Microsecond)

	clock.t = clock.t.Add(6 * time.Second)
	snap := w.Snapshot()
	if snap.Count != 1 || snap.MinUs != 200 {
		t.Fatalf("expected only the fresh sample, got %+v", snap)
	}

	clock.t = clock.t.Add(time.Minute)
	if snap := w.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected empty window, got %+v", snap)
	}
}

func TestWindowRecordClampsNegativeDuration(t *testing.T) {
	w, _ := newTestWindow(time.Hour)
	w.Record(-time.Second)
	if snap := w.Snapshot(); snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected clamped zero, got %+v", snap)
	}
}

func TestNewWindowDefaultsMaxAge(t *testing.T) {
	if w := NewWindow(0); w.maxAge != time.Hour {
		t.Errorf("expected default max age of 1h, got %v", w.maxAge)
	}
}

func TestPercentileEdges(t *testing.T) {
	vals := []int64{10, 20}
	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 10},
		{-5, 10},
		{100, 20},
		{50, 15},
	}
	for _, tt := range tests {
		if got := percentile(vals, tt.pct); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("expected 0 for no values")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(time.Hour)
	r.Record("parse", 10*time.Microsecond)
	r.Record("parse", 30*time.Microsecond)
	r.Record("render", time.Millisecond)

	snaps := r.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 operations, got %v", snaps)
	}
	if snaps["parse"].Count != 2 || snaps["parse"].AvgUs != 20 {
		t.Errorf("unexpected parse snapshot %+v", snaps["parse"])
	}
	if snaps["render"].MaxUs != 1000 {
		t.Errorf("unexpected render snapshot %+v", snaps["render"])
	}
}
