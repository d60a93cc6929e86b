package engine

import (
	"testing"
	"time"

	"serialterm/internal/model"
)

func TestTrackerFirstFrameHasZeroDelay(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	if d := tr.Enrich(model.DirectionIn, now); d != 0 {
		t.Errorf("first frame delay = %v, want 0", d)
	}
}

func TestTrackerMeasuresPerDirection(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.Enrich(model.DirectionIn, base)
	tr.Enrich(model.DirectionOut, base.Add(10*time.Millisecond))

	// The next incoming frame measures against the previous incoming one,
	// not the interleaved outgoing frame.
	if d := tr.Enrich(model.DirectionIn, base.Add(50*time.Millisecond)); d != 50*time.Millisecond {
		t.Errorf("incoming delay = %v, want 50ms", d)
	}
	if d := tr.Enrich(model.DirectionOut, base.Add(70*time.Millisecond)); d != 60*time.Millisecond {
		t.Errorf("outgoing delay = %v, want 60ms", d)
	}
}

func TestTrackerClampsClockSkew(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.Enrich(model.DirectionIn, base)
	if d := tr.Enrich(model.DirectionIn, base.Add(-time.Second)); d != 0 {
		t.Errorf("delay after clock step back = %v, want 0", d)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.Enrich(model.DirectionIn, base)
	tr.Reset()

	if d := tr.Enrich(model.DirectionIn, base.Add(time.Second)); d != 0 {
		t.Errorf("delay after reset = %v, want 0", d)
	}
}
