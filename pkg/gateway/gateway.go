/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package gateway wires the beacon observation engine together (spec
// §2 component 9, the Gateway Orchestrator): registry, radio, upstream
// reporter, ambient reporter, and the cooperative scheduler that drives
// them all, and exposes the query surface a UI observer would read.
package gateway

import (
	"github.com/sirupsen/logrus"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/ambient"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/proxy"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/radio"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/registry"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/reporter"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/rpc"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/variant"
)

// UIObserver is notified of beacon lifecycle events for local display
// (e.g. an activity LED), mirroring ovr_beaconGateway_ui.c's
// registry-listener wiring. Any of the three may be nil.
type UIObserver struct {
	OnFound  func(p *proxy.Proxy)
	OnUpdate func(p *proxy.Proxy)
	OnLost   func(p *proxy.Proxy)
}

// Gateway is the assembled engine: everything needed to drive the
// scheduler's logical threads.
type Gateway struct {
	logger logrus.FieldLogger

	radio    radio.Radio
	registry *registry.Registry
	reporter *reporter.Reporter
	ambient  *ambient.Reporter
	metrics  *gwmetrics.Metrics

	gatewayID string
	hwVariant variant.Variant

	scheduler *Scheduler
}

// Options bundles Gateway's collaborators (spec §6's external
// interfaces): the radio adapter, clock, RPC publisher, and the
// gateway's own identity and hardware variant.
type Options struct {
	Radio         radio.Radio
	Clock         clock.Source
	Publisher     rpc.Publisher
	GatewayID     string
	Variant       variant.Variant
	QueueCapacity int
	TempSensor    ambient.TempSensor
	LightSensor   ambient.LightSensor
	Metrics       *gwmetrics.Metrics
	Logger        logrus.FieldLogger
	UI            UIObserver
}

// New assembles a Gateway from opts and registers the scheduler's
// Bluetooth and Network work entries; no UI thread is created, and the
// UI observer's callbacks run on the Bluetooth thread as registry
// listeners. The caller starts it with Run.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	reg := registry.New(opts.Radio, opts.Clock, opts.QueueCapacity, logger)
	rep := reporter.New(reg, opts.Clock, opts.GatewayID, opts.Publisher, opts.Radio, opts.Variant, logger)
	amb := ambient.New(opts.Clock, opts.Publisher, opts.TempSensor, opts.LightSensor, opts.Radio.IsReady, logger)

	if opts.UI.OnFound != nil || opts.UI.OnUpdate != nil || opts.UI.OnLost != nil {
		reg.AddListener(opts.UI.OnFound, opts.UI.OnUpdate, opts.UI.OnLost)
	}

	if opts.Metrics != nil {
		reg.SetMetrics(opts.Metrics)
		rep.SetMetrics(opts.Metrics)
		amb.SetMetrics(opts.Metrics)
	}

	g := &Gateway{
		logger:    logger.WithField("component", "gateway"),
		radio:     opts.Radio,
		registry:  reg,
		reporter:  rep,
		ambient:   amb,
		metrics:   opts.Metrics,
		gatewayID: opts.GatewayID,
		hwVariant: opts.Variant,
	}

	g.scheduler = NewScheduler(logger)
	g.scheduler.Thread("Bluetooth").AddEntry("registry.Tick", g.tickBluetooth)
	g.scheduler.Thread("Network").AddEntry("reporter.Tick", rep.Tick)
	g.scheduler.Thread("Network").AddEntry("ambient.Tick", amb.Tick)
	if g.metrics != nil {
		g.scheduler.Thread("Network").AddEntry("metrics.Sample", g.sampleMetrics)
	}

	return g
}

func (g *Gateway) tickBluetooth() {
	g.registry.Tick()
}

func (g *Gateway) sampleMetrics() {
	g.metrics.Sample(g.registry.QueueDepth(), len(g.registry.KnownBeacons()), g.registry.QueueDropped(), g.radio.IsReady())
}

// Run blocks, driving the scheduler's logical threads until stop is
// closed.
func (g *Gateway) Run(stop <-chan struct{}) {
	g.logger.WithFields(logrus.Fields{
		"gatewayId": g.gatewayID,
		"variant":   g.hwVariant,
	}).Info("starting beacon gateway")
	g.scheduler.Run(stop)
}

// IsBeaconRadioReady exposes the radio's readiness for the UI observer
// (spec §2 component 9's query surface).
func (g *Gateway) IsBeaconRadioReady() bool {
	return g.radio.IsReady()
}

// LastAmbientTempDegC exposes the gateway's own last-read temperature.
func (g *Gateway) LastAmbientTempDegC() (float64, bool) {
	return g.ambient.LastTempDegC()
}

// LastAmbientLight255 exposes the gateway's own last-read ambient light
// level.
func (g *Gateway) LastAmbientLight255() (uint8, bool) {
	return g.ambient.LastLight255()
}

// HardwareVariant returns the detected hardware variant.
func (g *Gateway) HardwareVariant() variant.Variant {
	return g.hwVariant
}

// KnownBeacons exposes a snapshot of currently tracked beacon proxies,
// for the UI observer and for diagnostics.
func (g *Gateway) KnownBeacons() []*proxy.Proxy {
	return g.registry.KnownBeacons()
}
