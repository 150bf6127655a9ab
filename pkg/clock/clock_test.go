/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package clock

import "testing"

// fakeSource is a hand-rolled clock for deterministic timer tests,
// grounded on pkg/linux/mock_tcpinfo.go's test-only constructor pattern.
type fakeSource struct {
	ms      uint64
	clockOK bool
	unixS   uint32
}

func (f *fakeSource) NowMs() uint64                  { return f.ms }
func (f *fakeSource) IsClockSet() bool                { return f.clockOK }
func (f *fakeSource) UnixTimestampSeconds() uint32    { return f.unixS }

func TestTimer_IsElapsed(t *testing.T) {
	src := &fakeSource{ms: 0}
	tm := NewTimer(src)

	if tm.IsElapsed(100) {
		t.Fatalf("expected not elapsed at t=0")
	}

	src.ms = 99
	if tm.IsElapsed(100) {
		t.Fatalf("expected not elapsed at t=99")
	}

	src.ms = 100
	if !tm.IsElapsed(100) {
		t.Fatalf("expected elapsed at t=100")
	}
}

func TestTimer_IsElapsedRecurring_FiresOncePerPeriod(t *testing.T) {
	src := &fakeSource{ms: 0}
	tm := NewTimer(src)

	src.ms = 50
	if tm.IsElapsedRecurring(100) {
		t.Fatalf("fired too early")
	}

	src.ms = 100
	if !tm.IsElapsedRecurring(100) {
		t.Fatalf("expected first firing at t=100")
	}
	if tm.IsElapsedRecurring(100) {
		t.Fatalf("should not re-fire without further elapsed time")
	}

	src.ms = 150
	if tm.IsElapsedRecurring(100) {
		t.Fatalf("should measure drift from previous firing, not startup")
	}

	src.ms = 200
	if !tm.IsElapsedRecurring(100) {
		t.Fatalf("expected second firing at t=200")
	}
}

func TestSystem_ClockSetToggle(t *testing.T) {
	s := NewSystem()
	if !s.IsClockSet() {
		t.Fatalf("expected clock set by default")
	}
	s.SetClockSet(false)
	if s.IsClockSet() {
		t.Fatalf("expected clock unset after SetClockSet(false)")
	}
}
