/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package gwmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetrics_MustRegister_NoDuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()

	m.MustRegister(reg)
}

func TestMetrics_Sample_SetsGauges(t *testing.T) {
	m := New()
	m.Sample(3, 7, 2, true)

	if got := gaugeValue(t, m.QueueDepth); got != 3 {
		t.Errorf("QueueDepth = %v, want 3", got)
	}
	if got := gaugeValue(t, m.RegistryOccupied); got != 7 {
		t.Errorf("RegistryOccupied = %v, want 7", got)
	}
	if got := gaugeValue(t, m.QueueDropped); got != 2 {
		t.Errorf("QueueDropped = %v, want 2", got)
	}
	if got := gaugeValue(t, m.RadioReady); got != 1 {
		t.Errorf("RadioReady = %v, want 1", got)
	}

	m.Sample(0, 0, 2, false)
	if got := gaugeValue(t, m.RadioReady); got != 0 {
		t.Errorf("RadioReady = %v, want 0", got)
	}
}
