/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package beacon

import "testing"

func TestIdentity_String(t *testing.T) {
	id := Identity{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	if got, want := id.String(), "11:22:33:44:55:66"; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestIdentity_HexString(t *testing.T) {
	id := Identity{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	if got, want := id.HexString(), "112233445566"; got != want {
		t.Errorf("HexString() = %s, want %s", got, want)
	}
}

func TestIdentity_Equal(t *testing.T) {
	a := Identity{1, 2, 3, 4, 5, 6}
	b := Identity{1, 2, 3, 4, 5, 6}
	c := Identity{1, 2, 3, 4, 5, 7}

	if !a.Equal(b) {
		t.Errorf("expected a == b")
	}
	if a.Equal(c) {
		t.Errorf("expected a != c")
	}
}
