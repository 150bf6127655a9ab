/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package ambient implements the gateway's own on-board temperature and
// light sensor reporting loop (spec §4.8 / §2 component 8), grounded on
// ovr_beaconGateway.c's sensor read cadence: a periodic read is kicked
// off once the radio is ready, and each successful read publishes an
// onChange notification on its own subtopic before the next period's
// read is scheduled.
package ambient

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/rpc"
)

// SensorReadPeriodMs mirrors the original firmware's
// SENSOR_READ_PERIOD_MS cadence for the gateway's own temp/light
// sensors.
const SensorReadPeriodMs = 60000

// RPC node names (spec §6).
const (
	nodeTempOnChange  = "ambient/temp_c/onChange"
	nodeLightOnChange = "ambient/light_255/onChange"
)

// TempSensor reads the gateway's on-board temperature sensor. GetValue
// invokes onResult once the read completes; per spec §5 the callback
// may run on any thread, so Reporter only ever records the value
// atomically rather than touching the RPC node from within it.
type TempSensor interface {
	GetValue(onResult func(ok bool, degC float64))
}

// LightSensor reads the gateway's on-board ambient-light sensor.
type LightSensor interface {
	GetValue(onResult func(ok bool, light255 uint8))
}

// Reporter drives the ambient sensor read/report loop. Either sensor
// may be nil, matching the original firmware's "populated lightSensor
// XOR tempSensor" wiring for different hardware variants.
type Reporter struct {
	clockSrc  clock.Source
	publisher rpc.Publisher
	logger    logrus.FieldLogger

	temp  TempSensor
	light LightSensor

	readTimer *clock.Timer

	// Last-read values, updated from whatever thread the sensor driver
	// completes on (spec §5: "fields are primitive and word-sized;
	// torn reads are tolerated").
	lastTempMilliDegC atomic.Int64
	haveTemp          atomic.Bool
	lastLight255      atomic.Uint32
	haveLight         atomic.Bool

	radioReady func() bool

	metrics *gwmetrics.Metrics
}

// SetMetrics wires the reporter to count published/failed notifications.
// Passing nil disables counting.
func (r *Reporter) SetMetrics(m *gwmetrics.Metrics) {
	r.metrics = m
}

// New creates an ambient Reporter. radioReady gates sensor reads the
// same way the original firmware gates them on btle-client readiness,
// since the sensor bus and radio share the gateway's single I2C/SPI
// peripheral in most variants.
func New(source clock.Source, publisher rpc.Publisher, temp TempSensor, light LightSensor, radioReady func() bool, logger logrus.FieldLogger) *Reporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reporter{
		clockSrc:   source,
		publisher:  publisher,
		logger:     logger.WithField("component", "ambient"),
		temp:       temp,
		light:      light,
		readTimer:  clock.NewTimer(source),
		radioReady: radioReady,
	}
}

// Tick drives the periodic sensor read. Must be called from the thread
// the sensor driver's completion callbacks are expected to interleave
// with safely; in this design that is the Network thread, consistent
// with the reporter it shares notification plumbing with.
func (r *Reporter) Tick() {
	if r.radioReady != nil && !r.radioReady() {
		return
	}
	if !r.readTimer.IsElapsedRecurring(SensorReadPeriodMs) {
		return
	}

	if r.temp != nil {
		r.temp.GetValue(r.onTempResult)
	} else if r.light != nil {
		r.light.GetValue(r.onLightResult)
	}
}

func (r *Reporter) onTempResult(ok bool, degC float64) {
	if !ok {
		r.logger.Warn("failed to read gateway temperature")
	} else {
		r.lastTempMilliDegC.Store(int64(degC * 1000))
		r.haveTemp.Store(true)
		r.publishTemp(degC)
	}

	if r.light != nil {
		r.light.GetValue(r.onLightResult)
	}
}

func (r *Reporter) onLightResult(ok bool, light255 uint8) {
	if !ok {
		r.logger.Warn("failed to read gateway light level")
		return
	}

	r.lastLight255.Store(uint32(light255))
	r.haveLight.Store(true)
	r.publishLight(light255)
}

func (r *Reporter) publish(node string, payload []byte, warnMsg string) {
	err := r.publisher.PublishNotification(node, node, rpc.QoSAtMostOnce, payload)
	if r.metrics != nil {
		if err != nil {
			r.metrics.NotificationsFailed.Inc()
		} else {
			r.metrics.NotificationsSent.Inc()
		}
	}
	if err != nil {
		r.logger.WithError(err).Warn(warnMsg)
	}
}

func (r *Reporter) publishTemp(degC float64) {
	if !r.clockSrc.IsClockSet() {
		return
	}

	b := newBuilder()
	b.intField("timestamp_s_local", int64(r.clockSrc.UnixTimestampSeconds()))
	b.floatField("value_num", degC, 1)

	r.publish(nodeTempOnChange, b.bytes(), "failed to publish ambient temperature")
}

func (r *Reporter) publishLight(light255 uint8) {
	if !r.clockSrc.IsClockSet() {
		return
	}

	b := newBuilder()
	b.intField("timestamp_s_local", int64(r.clockSrc.UnixTimestampSeconds()))
	b.intField("value_num", int64(light255))

	r.publish(nodeLightOnChange, b.bytes(), "failed to publish ambient light")
}

// LastTempDegC returns the most recently read temperature and whether a
// successful read has ever completed.
func (r *Reporter) LastTempDegC() (float64, bool) {
	return float64(r.lastTempMilliDegC.Load()) / 1000.0, r.haveTemp.Load()
}

// LastLight255 returns the most recently read light level and whether a
// successful read has ever completed.
func (r *Reporter) LastLight255() (uint8, bool) {
	return uint8(r.lastLight255.Load()), r.haveLight.Load()
}
