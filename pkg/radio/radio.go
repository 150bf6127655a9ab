/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package radio defines the radio collaborator contract (spec §4.5,
// §6) that the beacon registry consumes: a thin interface over
// bringing a BLE radio ready, (re)starting passive scanning, and
// delivering advertisement frames. The registry never talks to radio
// hardware directly.
package radio

// AdvFieldType tags the kind of an advertising-data field.
type AdvFieldType uint8

const (
	AdvFieldTypeUnknown AdvFieldType = iota
	AdvFieldTypeManufacturerData
)

// AdvField is one entry in an advertisement's advertising-data list.
// Only manufacturer-data fields carry payload this gateway cares about.
type AdvField struct {
	Type             AdvFieldType
	ManufacturerCompanyID uint16
	ManufacturerBytes     []byte
}

// AdvPacket is a single received advertisement: RSSI plus its
// advertising-data field list (spec §6).
type AdvPacket struct {
	RSSIdBm  int8
	AdvFields []AdvField
}

// FindManufacturerField returns the first manufacturer-data field
// matching companyID, or false if none is present. A non-matching
// advertisement is not an error (spec §4.1) — it's simply ignored.
func (p *AdvPacket) FindManufacturerField(companyID uint16) (AdvField, bool) {
	for _, f := range p.AdvFields {
		if f.Type == AdvFieldTypeManufacturerData && f.ManufacturerCompanyID == companyID {
			return f, true
		}
	}
	return AdvField{}, false
}

// OnScanStartResult reports whether startPassiveScan succeeded.
type OnScanStartResult func(success bool)

// OnAdvertisement delivers a single received advertisement. It may be
// invoked from a different goroutine than the registry's tick.
type OnAdvertisement func(packet *AdvPacket)

// OnReady is invoked once the radio has completed initialization.
type OnReady func()

// OnFailedInit is invoked if radio initialization fails. autoRetry
// indicates whether the radio will retry on its own.
type OnFailedInit func(autoRetry bool)

// Radio is the capability surface the registry needs (spec §4.5). A
// concrete implementation (e.g. pkg/radio's tinygo-backed adapter, or a
// simulator for tests) wraps the actual BLE stack.
type Radio interface {
	// IsReady reports whether the radio has completed initialization.
	IsReady() bool

	// IsScanning reports whether a passive scan is currently active.
	IsScanning() bool

	// StartPassiveScan begins a non-connectable passive scan.
	// onScanStartResult fires once, synchronously or asynchronously,
	// reporting whether the scan actually started. onAdvertisement
	// fires for every received advertisement thereafter until the
	// scan is restarted or stopped.
	StartPassiveScan(onScanStartResult OnScanStartResult, onAdvertisement OnAdvertisement)

	// AddListener registers the radio's ready/failed-init callbacks.
	// Only one listener is expected in this design (the registry).
	AddListener(onReady OnReady, onFailedInit OnFailedInit)
}
