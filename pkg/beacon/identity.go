/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package beacon holds the immutable data model produced by the
// advertisement parser: beacon identity, device/accel status
// bitfields, and the BeaconUpdate value itself.
package beacon

import (
	"encoding/hex"
	"fmt"
)

// Identity is a 48-bit EUI-48 beacon identifier with total equality and
// a canonical "xx:xx:xx:xx:xx:xx" hex string form (spec §3).
type Identity [6]byte

// String returns the canonical colon-separated lowercase hex form, e.g.
// "11:22:33:44:55:66".
func (id Identity) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		id[0], id[1], id[2], id[3], id[4], id[5])
}

// HexString returns the identity as a contiguous hex string with no
// separators, e.g. "112233445566", matching the compact form used in
// gateway identifiers.
func (id Identity) HexString() string {
	return hex.EncodeToString(id[:])
}

// Equal reports whether two identities refer to the same beacon.
func (id Identity) Equal(other Identity) bool {
	return id == other
}
