/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package reporter implements the upstream reporter (spec §4.6): it
// subscribes to beacon lifecycle events and, on its own periodic tick,
// derives onBeaconFound/onBeaconLost/onBeaconUpdate/checkIn JSON
// notifications from registry state and publishes them over the RPC
// collaborator.
package reporter

import (
	"github.com/sirupsen/logrus"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/proxy"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/registry"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/rpc"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/variant"
)

// Periods from spec §6's tunable compile-time constants.
const (
	UpdatePeriodMs  = 60000
	CheckInPeriodMs = 60000
)

// RPC node names (spec §6).
const (
	nodeOnBeaconFound  = "onBeaconFound"
	nodeOnBeaconLost   = "onBeaconLost"
	nodeOnBeaconUpdate = "onBeaconUpdate"
	nodeCheckIn        = "checkIn"
)

// RadioStatus is the subset of the radio collaborator the reporter
// needs for checkIn's isBeaconRadioReady field.
type RadioStatus interface {
	IsReady() bool
}

// Reporter is the Upstream Reporter (spec §4.6). Its Tick must be
// called periodically from the Network thread; its registry
// subscription callbacks fire synchronously from the Bluetooth thread
// and must not block (spec §5), so they only record the event via the
// RPC publisher's own non-blocking semantics.
type Reporter struct {
	reg       *registry.Registry
	clockSrc  clock.Source
	gatewayID string
	publisher rpc.Publisher
	radio     RadioStatus
	variant   variant.Variant
	logger    logrus.FieldLogger

	updateTimer  *clock.Timer
	checkInTimer *clock.Timer

	metrics *gwmetrics.Metrics
}

// SetMetrics wires the reporter to count published/failed notifications.
// Passing nil disables counting.
func (r *Reporter) SetMetrics(m *gwmetrics.Metrics) {
	r.metrics = m
}

// New creates a Reporter and subscribes it to reg's found/lost
// lifecycle events. gatewayID is the per-gateway hex identity (spec
// §6's identity collaborator) embedded in every notification.
func New(reg *registry.Registry, source clock.Source, gatewayID string, publisher rpc.Publisher, radio RadioStatus, hwVariant variant.Variant, logger logrus.FieldLogger) *Reporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &Reporter{
		reg:          reg,
		clockSrc:     source,
		gatewayID:    gatewayID,
		publisher:    publisher,
		radio:        radio,
		variant:      hwVariant,
		logger:       logger.WithField("component", "reporter"),
		updateTimer:  clock.NewTimer(source),
		checkInTimer: clock.NewTimer(source),
	}

	reg.AddListener(r.onFound, nil, r.onLost)
	return r
}

// Tick drives the reporter's periodic work: the 60 s onBeaconUpdate
// sweep and the 60 s checkIn. Must be called only from the Network
// thread.
func (r *Reporter) Tick() {
	if r.updateTimer.IsElapsedRecurring(UpdatePeriodMs) {
		r.publishAllUpdates()
	}
	if r.checkInTimer.IsElapsedRecurring(CheckInPeriodMs) {
		r.publishCheckIn()
	}
}

// clockReady gates all publication on clock-is-set (spec §4.6): "if
// unset, no notification is emitted ... this is deliberate at-most-once".
func (r *Reporter) clockReady() bool {
	return r.clockSrc.IsClockSet()
}

// publish sends payload on node, logging and counting the outcome.
func (r *Reporter) publish(node string, payload []byte, logFields logrus.Fields) {
	err := r.publisher.PublishNotification(node, node, rpc.QoSAtMostOnce, payload)
	if r.metrics != nil {
		if err != nil {
			r.metrics.NotificationsFailed.Inc()
		} else {
			r.metrics.NotificationsSent.Inc()
		}
	}
	if err != nil {
		r.logger.WithError(err).WithFields(logFields).Warn("failed to publish notification")
	}
}

func (r *Reporter) onFound(p *proxy.Proxy) {
	if !r.clockReady() {
		return
	}
	r.publishLifecycle(nodeOnBeaconFound, p)
}

func (r *Reporter) onLost(p *proxy.Proxy) {
	if !r.clockReady() {
		return
	}
	r.publishLifecycle(nodeOnBeaconLost, p)
}

func (r *Reporter) publishLifecycle(node string, p *proxy.Proxy) {
	b := newPayloadBuilder(MaxPayloadBytes)
	b.stringField("gatewayId", r.gatewayID)
	b.intField("timestamp", int64(r.clockSrc.UnixTimestampSeconds()))
	b.stringField("beaconId", p.Identity().String())

	if b.Overflowed() {
		r.logger.WithField("beacon", p.Identity()).Warn("notification payload overflow, abandoning")
		return
	}

	r.publish(node, b.Bytes(), logrus.Fields{"beacon": p.Identity()})
}

func (r *Reporter) publishAllUpdates() {
	if !r.clockReady() {
		return
	}

	for _, p := range r.reg.KnownBeacons() {
		r.publishUpdate(p)
	}
}

func (r *Reporter) publishUpdate(p *proxy.Proxy) {
	update := p.LastUpdate()
	status := update.DeviceStatus

	b := newPayloadBuilder(MaxPayloadBytes)
	b.stringField("gatewayId", r.gatewayID)
	b.intField("timestamp", int64(r.clockSrc.UnixTimestampSeconds()))
	b.stringField("beaconId", p.Identity().String())
	b.intField("rssi", int64(update.RSSIdBm))
	b.boolAsIntField("isCharging", status.IsCharging)
	b.intField("batt_pcnt100", int64(update.BatteryPcnt))
	b.floatField("batt_v", float64(update.BatteryMv)/1000.0, 2)

	if status.IsAccelEnabled {
		accel := p.CheckAndResetAccelStatus()
		b.boolAsIntField("activity", accel.Activity)
		b.boolAsIntField("1tap", accel.Tap1)
		b.boolAsIntField("2tap", accel.Tap2)
		b.boolAsIntField("freeFall", accel.FreeFall)
	}

	if status.IsTempEnabled {
		b.floatField("temp_c", float64(update.TempDeciDegC)/10.0, 1)
	}

	if status.IsLightEnabled {
		b.intField("light_255", int64(update.Light255))
	}

	b.stringField("correlationId", rpc.NewCorrelationID())

	if b.Overflowed() {
		r.logger.WithField("beacon", p.Identity()).Warn("update payload overflow, abandoning")
		return
	}

	r.publish(nodeOnBeaconUpdate, b.Bytes(), logrus.Fields{"beacon": p.Identity()})
}

func (r *Reporter) publishCheckIn() {
	if !r.clockReady() {
		return
	}

	b := newPayloadBuilder(MaxPayloadBytes)
	b.intField("variant", int64(r.variant))
	b.intField("timestamp_s_local", int64(r.clockSrc.UnixTimestampSeconds()))
	b.boolAsIntField("isBeaconRadioReady", r.radio.IsReady())

	if b.Overflowed() {
		r.logger.Warn("checkIn payload overflow, abandoning")
		return
	}

	r.publish(nodeCheckIn, b.Bytes(), nil)
}
