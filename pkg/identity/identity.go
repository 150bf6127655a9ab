/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package identity provides the gateway's unique-id collaborator (spec
// §6): a stable per-process hex string used to root the outbound RPC
// node tree. github.com/rs/xid generates a globally unique, sortable,
// 12-byte id without the coordination a UUID v4 generator needs.
package identity

import (
	"encoding/hex"

	"github.com/rs/xid"
)

// Generator produces the gateway's unique hex identifier.
type Generator struct {
	id string
}

// NewGenerator mints a fresh identity. Call once at gateway start; the
// resulting hex string is stable for the process lifetime.
func NewGenerator() *Generator {
	id := xid.New()
	return &Generator{id: hex.EncodeToString(id[:])}
}

// NewGeneratorFromSeed rebuilds a Generator from a previously persisted
// hex string, so the gateway's RPC root stays stable across restarts
// when a caller chooses to persist it (the core registry itself does
// not persist anything, per spec's stated non-goals).
func NewGeneratorFromSeed(hex string) *Generator {
	return &Generator{id: hex}
}

// UniqueIDHexString implements the identity collaborator contract
// (spec §6: uniqueIdHexString() -> string).
func (g *Generator) UniqueIDHexString() string {
	return g.id
}
