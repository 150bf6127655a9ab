/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package rpc defines the outbound notification contract (spec §6): a
// thin seam over publishing JSON payloads under a per-gateway RPC node
// tree. Components that need to publish (the upstream reporter, the
// ambient sensor reporter) depend only on the Publisher interface, not
// on any particular transport.
package rpc

import "github.com/google/uuid"

// NewCorrelationID mints a fresh per-notification id, grounded on the
// original firmware's practice of stamping the periodic update
// notification with a freshly generated UUID
// (ovr_beaconManager_rpcInterface.c's updateUuid) so a downstream
// consumer can de-duplicate or trace it. pkg/reporter adds it to
// onBeaconUpdate only.
func NewCorrelationID() string {
	return uuid.NewString()
}

// QoS mirrors MQTT's quality-of-service levels. This gateway only ever
// publishes at QoSAtMostOnce (spec §6: "all notifications use
// at-most-once delivery semantics"); the type exists so the contract is
// self-documenting and so a future QoS1 path does not require changing
// the Publisher signature.
type QoS uint8

const (
	QoSAtMostOnce QoS = iota
	QoSAtLeastOnce
	QoSExactlyOnce
)

// Publisher is the RPC collaborator contract (spec §6):
// publishNotification(node, name, qos, payloadBytes, payloadLen). node
// is the RPC node path under the gateway's root (e.g. "onBeaconFound"
// or "ambient/temp_c/onChange"); name is carried separately because the
// original firmware's RPC node tree addresses a node and a notification
// name within it, a distinction preserved here even though this
// gateway only ever emits one notification name per node. payload is
// passed as a byte slice; implementations must not retain it beyond the
// call.
type Publisher interface {
	PublishNotification(node, name string, qos QoS, payload []byte) error
}
