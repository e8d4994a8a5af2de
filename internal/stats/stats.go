// Package stats keeps rolling latency windows for the formula operations
// served by the API (parse, render, sheet jobs).
package stats

import (
	"slices"
	"sort"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	us int64
}

// Snapshot aggregates the samples of one window. Durations are in
// microseconds since a single render is well under a millisecond.
type Snapshot struct {
	Count int     `json:"count"`
	MinUs int64   `json:"min_us"`
	MaxUs int64   `json:"max_us"`
	AvgUs float64 `json:"avg_us"`
	P50Us float64 `json:"p50_us"`
	P95Us float64 `json:"p95_us"`
	P99Us float64 `json:"p99_us"`
}

// Window holds the samples recorded within maxAge.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one duration. Negative durations count as zero.
func (w *Window) Record(d time.Duration) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, us: us})
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(w.now())
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, len(w.samples))
	var sum int64
	for i, s := range w.samples {
		values[i] = s.us
		sum += s.us
	}
	slices.Sort(values)

	return Snapshot{
		Count: len(values),
		MinUs: values[0],
		MaxUs: values[len(values)-1],
		AvgUs: float64(sum) / float64(len(values)),
		P50Us: percentile(values, 50),
		P95Us: percentile(values, 95),
		P99Us: percentile(values, 99),
	}
}

// Samples arrive in time order, so expired ones form a prefix.
func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	i := sort.Search(len(w.samples), func(i int) bool {
		return !w.samples[i].at.Before(cutoff)
	})
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}

// Recorder keeps one Window per operation name.
type Recorder struct {
	mu      sync.Mutex
	windows map[string]*Window
	maxAge  time.Duration
}

func NewRecorder(maxAge time.Duration) *Recorder {
	return &Recorder{windows: make(map[string]*Window), maxAge: maxAge}
}

// Record adds a sample to the named window, creating it on first use.
func (r *Recorder) Record(op string, d time.Duration) {
	r.window(op).Record(d)
}

// Since records the time elapsed since start.
func (r *Recorder) Since(op string, start time.Time) {
	r.Record(op, time.Since(start))
}

func (r *Recorder) window(op string) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[op]
	if !ok {
		w = NewWindow(r.maxAge)
		r.windows[op] = w
	}
	return w
}

// Snapshot returns a snapshot per operation seen so far.
func (r *Recorder) Snapshot() map[string]Snapshot {
	r.mu.Lock()
	windows := make(map[string]*Window, len(r.windows))
	for op, w := range r.windows {
		windows[op] = w
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(windows))
	for op, w := range windows {
		out[op] = w.Snapshot()
	}
	return out
}
