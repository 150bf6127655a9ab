/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package radio

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// TinygoAdapter is a Radio implementation backed by
// tinygo.org/x/bluetooth's cross-platform adapter (Linux BlueZ/DBus,
// or an HCI backend on supported boards), grounded on the scan loop
// shape in the pack's tinygo bluetooth vendor sources. It translates
// tinygo's ScanResult into the radio.AdvPacket shape the registry
// consumes, so the registry never imports tinygo.org/x/bluetooth
// directly.
type TinygoAdapter struct {
	adapter *bluetooth.Adapter
	logger  logrus.FieldLogger

	mu           sync.Mutex
	onReady      OnReady
	onFailedInit OnFailedInit

	ready    atomic.Bool
	scanning atomic.Bool
}

// NewTinygoAdapter wraps the given tinygo adapter (normally
// bluetooth.DefaultAdapter).
func NewTinygoAdapter(adapter *bluetooth.Adapter, logger logrus.FieldLogger) *TinygoAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TinygoAdapter{adapter: adapter, logger: logger}
}

// Boot enables the underlying radio and fires the ready/failed-init
// listener, mirroring the original firmware's btle client boot
// sequence (ovr_beaconManager.c's btleCb_onReady/btleCb_onFailedInit).
func (t *TinygoAdapter) Boot() {
	if err := t.adapter.Enable(); err != nil {
		t.logger.WithError(err).Warn("BLE radio failed to boot")
		t.mu.Lock()
		cb := t.onFailedInit
		t.mu.Unlock()
		if cb != nil {
			cb(false)
		}
		return
	}

	t.ready.Store(true)
	t.mu.Lock()
	cb := t.onReady
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (t *TinygoAdapter) IsReady() bool {
	return t.ready.Load()
}

func (t *TinygoAdapter) IsScanning() bool {
	return t.scanning.Load()
}

func (t *TinygoAdapter) StartPassiveScan(onScanStartResult OnScanStartResult, onAdvertisement OnAdvertisement) {
	t.scanning.Store(true)
	go func() {
		err := t.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			if onAdvertisement == nil {
				return
			}
			onAdvertisement(toAdvPacket(result))
		})
		if err != nil {
			t.scanning.Store(false)
			t.logger.WithError(err).Warn("failed to start scan")
			if onScanStartResult != nil {
				onScanStartResult(false)
			}
			return
		}
	}()

	if onScanStartResult != nil {
		onScanStartResult(true)
	}
}

func (t *TinygoAdapter) AddListener(onReady OnReady, onFailedInit OnFailedInit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReady = onReady
	t.onFailedInit = onFailedInit
}

func toAdvPacket(result bluetooth.ScanResult) *AdvPacket {
	packet := &AdvPacket{RSSIdBm: int8(result.RSSI)}

	for _, md := range result.AdvertisementPayload.ManufacturerData() {
		packet.AdvFields = append(packet.AdvFields, AdvField{
			Type:                  AdvFieldTypeManufacturerData,
			ManufacturerCompanyID: md.CompanyID,
			ManufacturerBytes:     md.Data,
		})
	}

	return packet
}
