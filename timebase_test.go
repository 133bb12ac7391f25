package ultrastar

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTimeWithoutBPM(t *testing.T) {
	var tb Timebase
	if got := tb.Time(0); got != 0 {
		t.Errorf("Time(0) with no BPM = %v, expected 0", got)
	}
	if got := tb.Time(1000); got != 0 {
		t.Errorf("Time(1000) with no BPM = %v, expected 0", got)
	}
}

func TestTimeGapOffset(t *testing.T) {
	tb := Timebase{Gap: 2.5}
	if got := tb.Time(100); !near(got, 2.5) {
		t.Errorf("Time(100) with gap only = %v, expected 2.5", got)
	}
	if err := tb.AddBPM(0, 120); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	// 8 ticks at 120 BPM, 4 ticks per beat: one second past the gap.
	if got := tb.Time(8); !near(got, 3.5) {
		t.Errorf("Time(8) = %v, expected 3.5", got)
	}
}

func TestTimeTempoChange(t *testing.T) {
	var tb Timebase
	if err := tb.AddBPM(0, 120); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	if err := tb.AddBPM(16, 240); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	// Ticks [0,16) at 120 BPM take exactly twice as long as [16,32) at
	// 240 BPM.
	if got := tb.Time(16); !near(got, 2.0) {
		t.Errorf("Time(16) = %v, expected 2.0", got)
	}
	if got := tb.Time(32); !near(got, 3.0) {
		t.Errorf("Time(32) = %v, expected 3.0", got)
	}
}

func TestTimeMonotonic(t *testing.T) {
	var tb Timebase
	changes := []struct {
		tick uint32
		bpm  float64
	}{{0, 120}, {16, 240}, {16, 60}, {32, 90}, {64, 300}}
	for _, c := range changes {
		if err := tb.AddBPM(c.tick, c.bpm); err != nil {
			t.Fatalf("AddBPM(%d, %g) failed: %v", c.tick, c.bpm, err)
		}
	}
	prev := tb.Time(0)
	for tick := uint32(1); tick <= 128; tick++ {
		cur := tb.Time(tick)
		if cur < prev {
			t.Fatalf("Time not monotonic: Time(%d)=%v < Time(%d)=%v", tick, cur, tick-1, prev)
		}
		prev = cur
	}
}

func TestAddBPMTieLastWins(t *testing.T) {
	var tb Timebase
	if err := tb.AddBPM(0, 120); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	if err := tb.AddBPM(0, 60); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	// 60 BPM yields 0.25 seconds per tick.
	if got := tb.Time(4); !near(got, 1.0) {
		t.Errorf("Time(4) = %v, expected 1.0 (last change at tick 0 should win)", got)
	}
}

func TestAddBPMRejectsBadInput(t *testing.T) {
	var tb Timebase
	if err := tb.AddBPM(0, 0); err == nil {
		t.Error("expected error for zero BPM")
	}
	if err := tb.AddBPM(0, -120); err == nil {
		t.Error("expected error for negative BPM")
	}
	if err := tb.AddBPM(16, 120); err != nil {
		t.Fatalf("AddBPM failed: %v", err)
	}
	if err := tb.AddBPM(8, 90); err == nil {
		t.Error("expected error for decreasing tick")
	}
}
