/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package gwmetrics exposes the gateway's internal process-health
// gauges via github.com/prometheus/client_golang, grounded on the
// teacher repo's counter/gauge usage in pkg/exporter: queue depth,
// registry occupancy, and drop counters are the in-process health
// signals a deployer would scrape alongside the beacon notifications
// themselves.
package gwmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the gauges and counters this gateway registers. A
// nil *Metrics is not usable; construct with New and register the
// result with a prometheus.Registerer (or the global DefaultRegisterer)
// before starting the gateway's scheduler.
type Metrics struct {
	QueueDepth       prometheus.Gauge
	QueueDropped     prometheus.Gauge
	RegistryOccupied prometheus.Gauge
	BeaconsFound     prometheus.Counter
	BeaconsLost      prometheus.Counter
	RadioReady       prometheus.Gauge
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

// New creates the metric collectors under the "beacon_gateway"
// namespace. Call MustRegister to wire them into a registry.
func New() *Metrics {
	return &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "beacon_gateway",
			Subsystem: "registry",
			Name:      "update_queue_depth",
			Help:      "Current number of pending beacon updates awaiting registry processing.",
		}),
		QueueDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "beacon_gateway",
			Subsystem: "registry",
			Name:      "update_queue_dropped_total",
			Help:      "Cumulative number of beacon updates dropped because the update queue was full.",
		}),
		RegistryOccupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "beacon_gateway",
			Subsystem: "registry",
			Name:      "beacons_tracked",
			Help:      "Current number of beacon proxies tracked by the registry.",
		}),
		BeaconsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beacon_gateway",
			Subsystem: "registry",
			Name:      "beacons_found_total",
			Help:      "Total number of beacons that transitioned to found.",
		}),
		BeaconsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beacon_gateway",
			Subsystem: "registry",
			Name:      "beacons_lost_total",
			Help:      "Total number of beacons that timed out and were removed.",
		}),
		RadioReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "beacon_gateway",
			Subsystem: "radio",
			Name:      "ready",
			Help:      "1 if the BLE radio has completed initialization, 0 otherwise.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beacon_gateway",
			Subsystem: "rpc",
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications successfully published upstream.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beacon_gateway",
			Subsystem: "rpc",
			Name:      "notifications_failed_total",
			Help:      "Total number of notification publish attempts that returned an error.",
		}),
	}
}

// MustRegister registers every collector with reg. Panics on a
// duplicate registration, matching prometheus.MustRegister's own
// contract.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.QueueDepth,
		m.QueueDropped,
		m.RegistryOccupied,
		m.BeaconsFound,
		m.BeaconsLost,
		m.RadioReady,
		m.NotificationsSent,
		m.NotificationsFailed,
	)
}

// Sample updates the gauge-valued metrics from the current snapshot
// values the caller obtained from the registry. Counter-valued metrics
// are incremented directly by their owning components as events occur
// (see Registry.SetMetrics, Reporter.SetMetrics, ambient.Reporter.SetMetrics).
func (m *Metrics) Sample(queueDepth, registryOccupied int, queueDropped uint64, radioReady bool) {
	m.QueueDepth.Set(float64(queueDepth))
	m.QueueDropped.Set(float64(queueDropped))
	m.RegistryOccupied.Set(float64(registryOccupied))
	if radioReady {
		m.RadioReady.Set(1)
	} else {
		m.RadioReady.Set(0)
	}
}
