/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package registry implements the fixed-capacity beacon registry (spec
// §4.4): advertisement intake, the MPSC-to-tick hand-off, found/
// updated/lost lifecycle, and listener fan-out.
package registry

import (
	"github.com/sirupsen/logrus"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/beacon"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/proxy"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/queue"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/radio"
)

// Tunable compile-time constants from spec §6.
const (
	MaxBeacons        = 16
	MaxListeners      = 4
	CompanyID  uint16 = 0xFFFF
	ScanCheckPeriodMs = 10000
)

// BeaconListener is fired synchronously on the Bluetooth thread
// (spec §5) as proxies are found, updated, and lost. Implementations
// must not block; cross-thread work must be deferred to the listener's
// own thread (see pkg/reporter).
type BeaconListener func(p *proxy.Proxy)

type listenerEntry struct {
	onFound  BeaconListener
	onUpdate BeaconListener
	onLost   BeaconListener
}

// Registry is the fixed-capacity table of beacon proxies keyed by
// identity, the single owner of beacon lifecycle state (spec §4.4). All
// of its methods except SubmitAdvertisement must be called only from
// the Bluetooth thread.
type Registry struct {
	clock  clock.Source
	logger logrus.FieldLogger
	r      radio.Radio

	updateQueue *queue.Queue

	beacons   []*proxy.Proxy
	listeners []listenerEntry

	scanCheckTimer *clock.Timer

	metrics *gwmetrics.Metrics
}

// SetMetrics wires the registry to increment beacon lifecycle counters
// as they occur. Passing nil disables counting; the default is no
// metrics until this is called.
func (reg *Registry) SetMetrics(m *gwmetrics.Metrics) {
	reg.metrics = m
}

// New creates a Registry wired to the given radio and clock. The
// registry subscribes to the radio's ready/failed-init listener
// immediately; call Tick() periodically (nominally every ~10ms, per
// spec §2's scheduling granularity) from the Bluetooth thread.
func New(r radio.Radio, source clock.Source, queueCapacity int, logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	reg := &Registry{
		clock:          source,
		logger:         logger.WithField("component", "registry"),
		r:              r,
		updateQueue:    queue.New(queueCapacity),
		scanCheckTimer: clock.NewTimer(source),
	}

	r.AddListener(reg.onRadioReady, reg.onRadioFailedInit)
	return reg
}

// AddListener registers a set of lifecycle callbacks. Any of the three
// may be nil. Exceeding MaxListeners is a programmer error (spec §4.4:
// "exceeds-capacity is a hard failure") and panics, mirroring the
// original firmware's cxa_assert.
func (reg *Registry) AddListener(onFound, onUpdate, onLost BeaconListener) {
	if len(reg.listeners) >= MaxListeners {
		panic("registry: listener table full")
	}
	reg.listeners = append(reg.listeners, listenerEntry{onFound: onFound, onUpdate: onUpdate, onLost: onLost})
}

// SubmitAdvertisement filters for the gateway's manufacturer company
// id, parses the payload if present, and enqueues the result for the
// next tick. It is the only Registry method safe to call from the
// radio callback context (spec §4.4, §5): non-blocking,
// allocation-light, and safe to interleave with Tick.
func (reg *Registry) SubmitAdvertisement(packet *radio.AdvPacket) {
	field, ok := packet.FindManufacturerField(CompanyID)
	if !ok {
		return
	}

	update, err := beacon.Parse(packet.RSSIdBm, field.ManufacturerBytes)
	if err != nil {
		return
	}

	if !reg.updateQueue.Enqueue(update) {
		// Warn on the first drop and then only at each power-of-two total,
		// so a sustained burst does not flood the log.
		if d := reg.updateQueue.Dropped(); d&(d-1) == 0 {
			reg.logger.WithField("dropped", d).Warn("beacon update queue full, dropping newest")
		}
	}
}

// Tick drives the registry's periodic work (spec §4.4): (re)start
// scanning if needed, drain the update queue into proxy lifecycle
// transitions, then prune timed-out proxies. Must be called only from
// the Bluetooth thread.
func (reg *Registry) Tick() {
	reg.maybeRestartScan()
	reg.processUpdateQueue()
	reg.pruneLostProxies()
}

// maybeRestartScan implements spec §4.4 step 1's steady-state check: the
// initial scan start happens once, synchronously, when the radio
// signals onReady (see onRadioReady below); here we only handle the
// recurring restart, and only when the radio reports it is not
// currently scanning (spec §9's resolved ambiguity).
func (reg *Registry) maybeRestartScan() {
	if !reg.r.IsReady() {
		return
	}

	if reg.scanCheckTimer.IsElapsedRecurring(ScanCheckPeriodMs) && !reg.r.IsScanning() {
		reg.logger.Info("restarting beacon scan")
		reg.startScan()
	}
}

func (reg *Registry) startScan() {
	reg.r.StartPassiveScan(reg.onScanStartResult, reg.onAdvertisement)
}

func (reg *Registry) processUpdateQueue() {
	updates := reg.updateQueue.BulkDequeuePeek()
	for _, update := range updates {
		reg.applyUpdate(update)
	}
	reg.updateQueue.BulkDequeueCommit(len(updates))
}

func (reg *Registry) applyUpdate(update beacon.Update) {
	for _, p := range reg.beacons {
		if p.Identity().Equal(update.Identity) {
			p.Apply(update)
			reg.logger.WithFields(logrus.Fields{
				"beacon":  p.Identity(),
				"rssi":    update.RSSIdBm,
				"temp_dc": update.TempDeciDegC,
				"batt":    update.BatteryPcnt,
				"light":   update.Light255,
			}).Debug("updated beacon proxy")
			reg.notify(reg.onUpdateListener, p)
			return
		}
	}

	if len(reg.beacons) >= MaxBeacons {
		reg.logger.WithField("beacon", update.Identity).Warn("too many beacons in range, dropping")
		return
	}

	p := proxy.New(reg.clock, update)
	reg.beacons = append(reg.beacons, p)
	reg.logger.WithField("beacon", p.Identity()).Debug("new beacon proxy")
	if reg.metrics != nil {
		reg.metrics.BeaconsFound.Inc()
	}
	reg.notify(reg.onFoundListener, p)
}

func (reg *Registry) pruneLostProxies() {
	var timedOut []*proxy.Proxy
	for _, p := range reg.beacons {
		if p.HasTimedOut() {
			timedOut = append(timedOut, p)
		}
	}

	for _, p := range timedOut {
		reg.logger.WithField("beacon", p.Identity()).Debug("lost beacon proxy")
		if reg.metrics != nil {
			reg.metrics.BeaconsLost.Inc()
		}
		reg.notify(reg.onLostListener, p)
		reg.remove(p)
	}
}

func (reg *Registry) remove(target *proxy.Proxy) {
	for i, p := range reg.beacons {
		if p == target {
			reg.beacons = append(reg.beacons[:i], reg.beacons[i+1:]...)
			return
		}
	}
}

func (reg *Registry) notify(pick func(listenerEntry) BeaconListener, p *proxy.Proxy) {
	for _, l := range reg.listeners {
		if cb := pick(l); cb != nil {
			cb(p)
		}
	}
}

func (reg *Registry) onFoundListener(l listenerEntry) BeaconListener  { return l.onFound }
func (reg *Registry) onUpdateListener(l listenerEntry) BeaconListener { return l.onUpdate }
func (reg *Registry) onLostListener(l listenerEntry) BeaconListener   { return l.onLost }

// KnownBeacons returns a read-only snapshot of currently tracked
// proxies. Callers must only use it synchronously from the Bluetooth
// thread (spec §4.4).
func (reg *Registry) KnownBeacons() []*proxy.Proxy {
	out := make([]*proxy.Proxy, len(reg.beacons))
	copy(out, reg.beacons)
	return out
}

// QueueDepth exposes the pending update count for metrics.
func (reg *Registry) QueueDepth() int {
	return reg.updateQueue.Len()
}

// QueueDropped exposes the cumulative dropped-update count for metrics.
func (reg *Registry) QueueDropped() uint64 {
	return reg.updateQueue.Dropped()
}

func (reg *Registry) onRadioReady() {
	reg.scanCheckTimer.Reset()
	reg.startScan()
}

func (reg *Registry) onRadioFailedInit(autoRetry bool) {
	reg.logger.Warn("BLE radio failed to boot")
}

func (reg *Registry) onScanStartResult(success bool) {
	if !success {
		reg.logger.Warn("failed to start scan")
	}
}

func (reg *Registry) onAdvertisement(packet *radio.AdvPacket) {
	reg.SubmitAdvertisement(packet)
}
