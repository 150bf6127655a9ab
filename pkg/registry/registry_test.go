/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package registry

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/beacon"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/proxy"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/radio"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

type fakeClock struct {
	ms      uint64
	clockOK bool
	unixS   uint32
}

func (f *fakeClock) NowMs() uint64               { return f.ms }
func (f *fakeClock) IsClockSet() bool            { return f.clockOK }
func (f *fakeClock) UnixTimestampSeconds() uint32 { return f.unixS }

func validPayload(idByte byte) []byte {
	return []byte{0x01, 0x11, 0x22, 0x33, 0x44, 0x55, idByte, 0x00, 0x50, 0xC8, 0x00, 0x80, 0x01, 0xD0, 0x07}
}

func manufacturerPacket(companyID uint16, payload []byte, rssi int8) *radio.AdvPacket {
	return &radio.AdvPacket{
		RSSIdBm: rssi,
		AdvFields: []radio.AdvField{
			{Type: radio.AdvFieldTypeManufacturerData, ManufacturerCompanyID: companyID, ManufacturerBytes: payload},
		},
	}
}

func TestRegistry_FirstSighting(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	var found []*proxy.Proxy
	reg.AddListener(func(p *proxy.Proxy) { found = append(found, p) }, nil, nil)

	sim.SetReady()
	reg.Tick()

	sim.Inject(manufacturerPacket(CompanyID, validPayload(0x66), -60))
	reg.Tick()

	if len(found) != 1 {
		t.Fatalf("onFound fired %d times, want 1", len(found))
	}
	if got, want := found[0].Identity().String(), "11:22:33:44:55:66"; got != want {
		t.Errorf("found beacon identity = %s, want %s", got, want)
	}
	if len(reg.KnownBeacons()) != 1 {
		t.Errorf("expected 1 known beacon, got %d", len(reg.KnownBeacons()))
	}
}

func TestRegistry_WrongCompanyID_SilentSkip(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	var fired bool
	reg.AddListener(func(p *proxy.Proxy) { fired = true }, func(p *proxy.Proxy) { fired = true }, func(p *proxy.Proxy) { fired = true })

	sim.SetReady()
	reg.Tick()

	sim.Inject(manufacturerPacket(0x1234, validPayload(0x66), -60))
	reg.Tick()

	if fired {
		t.Errorf("expected no listener to fire for non-matching company id")
	}
	if len(reg.KnownBeacons()) != 0 {
		t.Errorf("expected no beacons registered, got %d", len(reg.KnownBeacons()))
	}
}

func TestRegistry_LostLifecycle(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true, ms: 0}
	reg := New(sim, clk, 4, nil)

	var lostCount, foundCount int
	reg.AddListener(
		func(p *proxy.Proxy) { foundCount++ },
		nil,
		func(p *proxy.Proxy) { lostCount++ },
	)

	sim.SetReady()
	reg.Tick()

	sim.Inject(manufacturerPacket(CompanyID, validPayload(0x66), -60))
	reg.Tick()
	if foundCount != 1 {
		t.Fatalf("foundCount = %d, want 1", foundCount)
	}

	clk.ms = proxy.LostTimeoutMs + 1
	reg.Tick()

	if lostCount != 1 {
		t.Fatalf("lostCount = %d, want 1", lostCount)
	}
	if len(reg.KnownBeacons()) != 0 {
		t.Fatalf("expected proxy removed after lost, got %d known", len(reg.KnownBeacons()))
	}

	clk.ms = proxy.LostTimeoutMs + 2
	sim.Inject(manufacturerPacket(CompanyID, validPayload(0x66), -55))
	reg.Tick()

	if foundCount != 2 {
		t.Fatalf("expected a fresh onFound after re-sighting, foundCount = %d", foundCount)
	}
}

func TestRegistry_QueueOverflow_ExactlyCapacityDeliveredInOrder(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	var updateOrder []byte
	reg.AddListener(
		func(p *proxy.Proxy) { updateOrder = append(updateOrder, p.Identity()[5]) },
		func(p *proxy.Proxy) { updateOrder = append(updateOrder, p.Identity()[5]) },
		nil,
	)

	sim.SetReady()
	reg.Tick()

	for i := byte(1); i <= 5; i++ {
		sim.Inject(manufacturerPacket(CompanyID, validPayload(i), -60))
	}

	reg.Tick()

	if len(updateOrder) != 4 {
		t.Fatalf("expected exactly 4 updates delivered to the consumer, got %d", len(updateOrder))
	}
	for i, id := range updateOrder {
		if id != byte(i+1) {
			t.Errorf("FIFO order violated at index %d: got id byte %d, want %d", i, id, i+1)
		}
	}
}

func TestRegistry_MaxBeaconsCapacity(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, MaxBeacons+1, nil)

	sim.SetReady()
	reg.Tick()

	for i := 0; i < MaxBeacons+1; i++ {
		sim.Inject(manufacturerPacket(CompanyID, validPayload(byte(i)), -60))
	}
	reg.Tick()

	if len(reg.KnownBeacons()) != MaxBeacons {
		t.Fatalf("KnownBeacons() = %d, want %d (capacity enforced)", len(reg.KnownBeacons()), MaxBeacons)
	}
}

func TestRegistry_ParseFailure_SilentSkip(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	var fired bool
	reg.AddListener(func(p *proxy.Proxy) { fired = true }, nil, nil)

	sim.SetReady()
	reg.Tick()

	shortPayload := make([]byte, beacon.MinPayloadBytes-1)
	sim.Inject(manufacturerPacket(CompanyID, shortPayload, -60))
	reg.Tick()

	if fired {
		t.Errorf("expected no listener to fire for a malformed payload")
	}
}

func TestRegistry_ScanRestart_OnlyWhenNotScanning(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	sim.SetReady()
	if !sim.IsScanning() {
		t.Fatalf("expected scan started immediately on radio ready")
	}

	clk.ms = ScanCheckPeriodMs + 1
	reg.Tick()
	if !sim.IsScanning() {
		t.Fatalf("radio still reports scanning; registry should not have needed to restart")
	}

	sim.StopScanning()
	clk.ms = 2*ScanCheckPeriodMs + 2
	reg.Tick()
	if !sim.IsScanning() {
		t.Fatalf("expected registry to restart scan once radio reports not-scanning")
	}
}

func TestRegistry_Metrics_CountsFoundAndLost(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	m := gwmetrics.New()
	reg.SetMetrics(m)

	sim.SetReady()
	reg.Tick()

	sim.Inject(manufacturerPacket(CompanyID, validPayload(0x66), -60))
	reg.Tick()

	if got := counterValue(t, m.BeaconsFound); got != 1 {
		t.Errorf("BeaconsFound = %v, want 1", got)
	}

	clk.ms = proxy.LostTimeoutMs + 1
	reg.Tick()

	if got := counterValue(t, m.BeaconsLost); got != 1 {
		t.Errorf("BeaconsLost = %v, want 1", got)
	}
}

func TestRegistry_ListenerCapacity_Panics(t *testing.T) {
	sim := radio.NewSimulator()
	clk := &fakeClock{clockOK: true}
	reg := New(sim, clk, 4, nil)

	for i := 0; i < MaxListeners; i++ {
		reg.AddListener(nil, nil, nil)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when exceeding MaxListeners")
		}
	}()
	reg.AddListener(nil, nil, nil)
}
