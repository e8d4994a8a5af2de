package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestNewID_Format(t *testing.T) {
	id := NewID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for _, r := range id {
		if !strings.ContainsRune(crockford, r) {
			t.Errorf("unexpected character %q in %q", r, id)
		}
	}
}

// resetULID clears the last issued id so tests can pick their own clock.
func resetULID() {
	ulidMu.Lock()
	ulidLast = [16]byte{}
	ulidMu.Unlock()
}

func TestNewID_MonotonicWithinMillisecond(t *testing.T) {
	resetULID()
	at := time.UnixMilli(1_700_000_000_000)
	prev := newIDAt(at)
	for range 100 {
		next := newIDAt(at)
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}

func TestNewID_SortsByTime(t *testing.T) {
	resetULID()
	a := newIDAt(time.UnixMilli(1_700_000_000_000))
	b := newIDAt(time.UnixMilli(1_700_000_000_001))
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}
	if a[:10] == b[:10] {
		t.Errorf("expected time prefixes to differ: %q %q", a, b)
	}
}

func TestNewID_MonotonicWhenClockStepsBack(t *testing.T) {
	resetULID()
	later := newIDAt(time.UnixMilli(1_700_000_005_000))
	earlier := newIDAt(time.UnixMilli(1_700_000_000_000))
	if earlier <= later {
		t.Fatalf("expected %q > %q after the clock stepped back", earlier, later)
	}
	if earlier[:10] != later[:10] {
		t.Errorf("expected the later timestamp kept: %q %q", later, earlier)
	}
	resumed := newIDAt(time.UnixMilli(1_700_000_006_000))
	if resumed <= earlier || resumed[:10] == later[:10] {
		t.Errorf("expected a fresh timestamp once the clock moves on, got %q after %q", resumed, earlier)
	}
}

func TestEncodeULID_Zero(t *testing.T) {
	if got := encodeULID([16]byte{}); got != strings.Repeat("0", 26) {
		t.Errorf("unexpected encoding %q", got)
	}
	var all [16]byte
	for i := range all {
		all[i] = 0xff
	}
	if got := encodeULID(all); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("unexpected encoding %q", got)
	}
}
