/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package variant

import (
	"errors"
	"testing"
)

type fakeStrap struct {
	val bool
	err error
}

func (f fakeStrap) Value() (bool, error) { return f.val, f.err }

func TestDetect(t *testing.T) {
	cases := []struct {
		name    string
		hp, ext bool
		want    Variant
	}{
		{"internal high power", true, false, InternalHighPower},
		{"external", false, true, External},
		{"internal", false, false, Internal},
		{"both strapped — unknown", true, true, Unknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(fakeStrap{val: tc.hp}, fakeStrap{val: tc.ext})
			if got != tc.want {
				t.Errorf("Detect() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetect_ReadErrorYieldsUnknown(t *testing.T) {
	got := Detect(fakeStrap{err: errors.New("gpio fault")}, fakeStrap{val: true})
	if got != Unknown {
		t.Errorf("Detect() = %v, want Unknown on read error", got)
	}
}

func TestVariant_String(t *testing.T) {
	if Internal.String() != "internal" {
		t.Errorf("String() = %q, want %q", Internal.String(), "internal")
	}
	if Variant(99).String() != "unknown" {
		t.Errorf("String() on out-of-range value should default to unknown")
	}
}
