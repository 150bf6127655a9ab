/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package proxy implements the gateway's in-memory shadow of a remote
// beacon (spec §4.3): last update, last-seen timestamp, and a latched
// accelerometer status that survives between reporter polls.
package proxy

import (
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/beacon"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
)

// LostTimeoutMs is the interval after which a proxy with no further
// updates is considered gone (spec §6, LOST_TIMEOUT_MS).
const LostTimeoutMs = 60000

// Proxy is mutable, owned exclusively by the registry, and touched only
// on the Bluetooth thread (spec §4.3, §5). Its identity never changes
// after creation.
type Proxy struct {
	lastUpdate        beacon.Update
	lastSeen          *clock.Timer
	cachedAccelStatus beacon.AccelStatus
}

// New creates a Proxy from the first update seen for a previously
// unknown identity: it copies the update, seeds cachedAccelStatus from
// it, and starts the last-seen timer at now.
func New(source clock.Source, initial beacon.Update) *Proxy {
	return &Proxy{
		lastUpdate:        initial,
		lastSeen:          clock.NewTimer(source),
		cachedAccelStatus: initial.AccelStatus,
	}
}

// Apply replaces lastUpdate, resets the last-seen timer, and OR-latches
// the new update's accel flags into cachedAccelStatus (spec §4.3): a
// bit that is already 1 stays 1, and a 0-to-1 transition sticks until
// the next CheckAndResetAccelStatus.
func (p *Proxy) Apply(update beacon.Update) {
	p.lastUpdate = update
	p.lastSeen.Reset()
	p.cachedAccelStatus.OrLatch(update.AccelStatus)
}

// CheckAndResetAccelStatus returns the latched status and reseeds the
// latch from lastUpdate.AccelStatus (not zero), so an event still
// present in the most recent update remains latched for the next
// reader while events it already reported are cleared (spec §4.3).
func (p *Proxy) CheckAndResetAccelStatus() beacon.AccelStatus {
	current := p.cachedAccelStatus
	p.cachedAccelStatus = p.lastUpdate.AccelStatus
	return current
}

// HasTimedOut reports whether more than LostTimeoutMs has passed since
// the last applied update. This is a strict comparison (spec §4.3:
// "now - td_lastUpdate > LOST_TIMEOUT_MS"); a proxy exactly at the
// boundary has not yet timed out.
func (p *Proxy) HasTimedOut() bool {
	return p.lastSeen.ElapsedMs() > LostTimeoutMs
}

// Identity returns the beacon identity this proxy tracks. It never
// changes across the proxy's lifetime.
func (p *Proxy) Identity() beacon.Identity {
	return p.lastUpdate.Identity
}

// DeviceType returns the device type from the most recent update.
func (p *Proxy) DeviceType() beacon.DeviceType {
	return p.lastUpdate.DevType
}

// LastUpdate returns the most recently applied update.
func (p *Proxy) LastUpdate() beacon.Update {
	return p.lastUpdate
}
