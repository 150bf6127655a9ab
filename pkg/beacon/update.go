/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package beacon

// DeviceType identifies the beacon hardware/firmware generation that
// produced an advertisement, decoded from payload byte 0.
type DeviceType uint8

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeBeaconV1
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeBeaconV1:
		return "BeaconV1"
	default:
		return "Unknown"
	}
}

// decodeDeviceType maps the raw byte 0 value onto a DeviceType. Any
// value other than the one reserved for BeaconV1 is treated as Unknown
// rather than a parse error — an unrecognized-but-well-formed
// advertisement is still worth tracking in the registry.
func decodeDeviceType(raw byte) DeviceType {
	if raw == byte(DeviceTypeBeaconV1) {
		return DeviceTypeBeaconV1
	}
	return DeviceTypeUnknown
}

// Update is the immutable value produced by the advertisement parser
// (spec §3). It is copied by value into proxies and queue slots; it
// holds no pointers, so it is safe to pass between the radio callback
// context and the registry tick without synchronization beyond the
// queue itself.
type Update struct {
	RSSIdBm      int8
	DevType      DeviceType
	Identity     Identity
	DeviceStatus DeviceStatus
	BatteryPcnt  uint8
	TempDeciDegC uint16
	Light255     uint8
	AccelStatus  AccelStatus
	BatteryMv    uint16
}
