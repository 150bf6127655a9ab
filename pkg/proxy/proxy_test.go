/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package proxy

import (
	"testing"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/beacon"
)

type fakeSource struct{ ms uint64 }

func (f *fakeSource) NowMs() uint64               { return f.ms }
func (f *fakeSource) IsClockSet() bool            { return true }
func (f *fakeSource) UnixTimestampSeconds() uint32 { return 0 }

func TestProxy_LatchLaw(t *testing.T) {
	src := &fakeSource{}
	u1 := beacon.Update{AccelStatus: beacon.AccelStatus{Tap1: true}}
	p := New(src, u1)

	// Second update arrives with Tap1 cleared but FreeFall set; no
	// reader has consumed the latch in between.
	u2 := beacon.Update{AccelStatus: beacon.AccelStatus{FreeFall: true}}
	p.Apply(u2)

	got := p.cachedAccelStatus
	want := beacon.AccelStatus{Tap1: true, FreeFall: true}
	if got != want {
		t.Errorf("latched status = %+v, want %+v (OR of all updates)", got, want)
	}
}

func TestProxy_CheckAndResetAccelStatus_ReseedsFromLastUpdate(t *testing.T) {
	src := &fakeSource{}
	u1 := beacon.Update{AccelStatus: beacon.AccelStatus{Tap1: true}}
	p := New(src, u1)

	u2 := beacon.Update{AccelStatus: beacon.AccelStatus{}}
	p.Apply(u2)

	// Tap1 is latched from u1 even though u2 cleared it.
	got := p.CheckAndResetAccelStatus()
	if !got.Tap1 {
		t.Fatalf("expected Tap1 still latched before reset, got %+v", got)
	}

	// Immediately after, cachedAccelStatus must equal lastUpdate's
	// accel status (u2's, which has no bits set).
	if p.cachedAccelStatus != u2.AccelStatus {
		t.Errorf("post-reset cache = %+v, want %+v", p.cachedAccelStatus, u2.AccelStatus)
	}
}

func TestProxy_HasTimedOut(t *testing.T) {
	src := &fakeSource{ms: 0}
	p := New(src, beacon.Update{})

	src.ms = LostTimeoutMs
	if p.HasTimedOut() {
		t.Errorf("expected not timed out at exactly the boundary (strict >)")
	}

	src.ms = LostTimeoutMs + 1
	if !p.HasTimedOut() {
		t.Errorf("expected timed out past the boundary")
	}
}

func TestProxy_ApplyResetsLastSeen(t *testing.T) {
	src := &fakeSource{ms: 0}
	p := New(src, beacon.Update{})

	src.ms = LostTimeoutMs + 1
	p.Apply(beacon.Update{})

	if p.HasTimedOut() {
		t.Errorf("expected Apply to reset the last-seen timer")
	}
}

func TestProxy_IdentityStableAcrossApply(t *testing.T) {
	src := &fakeSource{}
	id := beacon.Identity{1, 2, 3, 4, 5, 6}
	p := New(src, beacon.Update{Identity: id})

	// The registry only ever calls Apply with updates for the proxy's
	// own identity; across such a sequence, Identity() is stable.
	p.Apply(beacon.Update{Identity: id, BatteryPcnt: 50})

	if p.Identity() != id {
		t.Errorf("Identity() changed across Apply: got %v, want %v", p.Identity(), id)
	}
}
